// Package build orchestrates recipe execution against the container
// runtime.
//
// A recipe is an ordered sequence of stages, each backed by a container
// created from a base image. The pipeline starts a container per stage,
// dispatches its steps (shell commands, host copies, and cross-stage
// transfers), and exports each non-transient stage as an OCI image with
// the recipe's entrypoint and labels. Multi-platform builds repeat the
// pipeline per platform, writing each result to a platform-specific
// output directory.
//
// Collections pull paths out of named stages onto the host after the
// stage's steps complete; the wheel pipeline uses this to land the built
// wheel under the output directory where it can be checked and summed.
//
// Step state (environment, working directory, shell) accumulates across
// steps within a stage and resets between stages. Container operations
// are delegated to the runtime package.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Recipe:    recipe,
//	    Resource:  "ecs-composex",
//	    Output:    "dist",
//	    Root:      ".",
//	    Platforms: []string{"linux/amd64"},
//	})
//	if err != nil {
//	    return err
//	}
package build
