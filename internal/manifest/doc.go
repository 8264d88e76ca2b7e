// Package manifest defines the recipe model for multi-stage image builds.
//
// A recipe is an ordered list of stages. Each stage names a base image
// (a registry reference or a local OCI archive) and an ordered list of
// steps: shell commands, file copies from the build context, cross-stage
// copies from earlier stages, and modifiers that adjust the shell, working
// directory, or environment for subsequent steps. Stages marked transient
// exist only to feed later stages and are never exported.
//
// Recipes are parameterized by build args. Every string field may contain
// ${NAME} placeholders, resolved by [Recipe.Expand] from the recipe's own
// defaults overlaid with caller-supplied values. The three canonical args
// (ARCH, VERSION, BASE_IMAGE) carry documented defaults so a recipe is
// runnable with no overrides at all.
//
// The built-in Python wheel pipeline is produced by [Wheel]: a transient
// builder stage creates a virtual environment and builds a wheel from the
// copied source tree, and a runtime stage installs the wheel and exposes
// the package's console script as the image entrypoint.
package manifest
