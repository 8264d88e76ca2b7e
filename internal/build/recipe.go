package build

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oakmill/wheelwright/internal/manifest"
	"github.com/oakmill/wheelwright/internal/metrics"
	"github.com/oakmill/wheelwright/internal/runtime"
)

// Holds shared state for building all stages of a recipe.
type recipe struct {
	rt         *runtime.Runtime     // Container runtime for image and container operations.
	resource   string               // Resource name, used as a prefix for container IDs.
	output     string               // Output directory for build artifacts.
	context    string               // Build context root for resolving copy sources.
	entrypoint []string             // Entrypoint set on exported images.
	labels     map[string]string    // Labels set on exported images.
	platforms  []string             // Target platforms.
	collect    []Collect            // Stage paths to pull out to the host.
	metrics    metrics.Recorder     // Stage timing sink.
	containers []*runtime.Container // All stage containers, destroyed after the build.
	artifacts  []string             // Files written under the output directory.
}

// Creates a new [recipe] from the given options.
func newRecipe(rt *runtime.Runtime, opts Options) *recipe {
	entrypoint := opts.Entrypoint
	if len(entrypoint) == 0 {
		entrypoint = opts.Recipe.Entrypoint
	}

	labels := make(map[string]string, len(opts.Recipe.Labels)+len(opts.Labels))
	maps.Copy(labels, opts.Recipe.Labels)
	maps.Copy(labels, opts.Labels)

	return &recipe{
		rt:         rt,
		resource:   opts.Resource,
		output:     opts.Output,
		context:    opts.Root,
		entrypoint: entrypoint,
		labels:     labels,
		platforms:  opts.Platforms,
		collect:    opts.Collect,
		metrics:    opts.Metrics,
	}
}

// Builds the recipe end-to-end against the container runtime.
//
// Each target platform is built independently. Stages are built in
// declaration order for each platform. All stage containers are destroyed
// when the build completes.
func (r *recipe) build(ctx context.Context, stages []manifest.Stage) (*Result, error) {
	defer r.destroyContainers(ctx)

	for _, platform := range r.platforms {
		if err := r.buildPlatform(ctx, stages, platform); err != nil {
			return nil, err
		}
	}

	return &Result{Output: r.output, Artifacts: r.artifacts}, nil
}

// Builds all stages of the recipe for a single platform.
//
// Each platform maintains its own set of named stage containers for
// cross-stage copy lookups. The output is written to a platform-specific
// subdirectory when building for multiple platforms.
func (r *recipe) buildPlatform(ctx context.Context, recipeStages []manifest.Stage, platform string) error {
	slog.Info("building platform", "platform", platform)

	output := r.platformOutput(platform)
	if err := os.MkdirAll(output, outputDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	stages := make(map[string]*runtime.Container)

	for i, stage := range recipeStages {
		if err := r.buildStage(ctx, stage, i, platform, output, stages); err != nil {
			return fmt.Errorf("%w: platform %s, stage %s: %w", ErrBuild, platform, stageLabel(stage.Name, i), err)
		}
	}

	return nil
}

// Builds a single stage of a recipe for a specific platform.
//
// Starts a build container from the stage's base, executes the stage's
// steps, runs any collections targeting the stage, and exports the result
// when the stage is not transient.
func (r *recipe) buildStage(ctx context.Context, stage manifest.Stage, index int, platform, output string, stages map[string]*runtime.Container) error {
	label := stageLabel(stage.Name, index)
	slog.Info(fmt.Sprintf("building stage %s", label), "platform", platform)
	start := time.Now()

	id := r.containerID(stage.Name, index, platform)
	ctr, err := r.rt.StartContainer(ctx, stage.From, id, platform)
	if err != nil {
		return err
	}

	r.containers = append(r.containers, ctr)
	if stage.Name != "" {
		stages[stage.Name] = ctr
	}

	if err := executeSteps(ctx, ctr, stage.Steps, newStepState(), r.context, stages); err != nil {
		return err
	}

	if err := r.collectArtifacts(ctx, ctr, stage.Name, output); err != nil {
		return err
	}

	if !stage.Transient {
		if err := ctr.Stop(ctx); err != nil {
			return err
		}

		if err := ctr.Export(ctx, output, r.entrypoint, r.labels); err != nil {
			return err
		}
		r.artifacts = append(r.artifacts, filepath.Join(output, "image.tar"))
	}

	r.metrics.ObserveStageDuration(label, time.Since(start))
	return nil
}

// Runs the collections that target the given stage, extracting each path
// into the output directory and recording the extracted files.
func (r *recipe) collectArtifacts(ctx context.Context, ctr *runtime.Container, stageName, output string) error {
	for _, col := range r.collect {
		if col.Stage != stageName || stageName == "" {
			continue
		}

		files, err := collectPath(ctx, ctr, col.Path, output)
		if err != nil {
			return fmt.Errorf("%w: stage %q path %s: %w", ErrCollect, stageName, col.Path, err)
		}
		r.artifacts = append(r.artifacts, files...)
	}
	return nil
}

// Destroys all stage containers.
func (r *recipe) destroyContainers(ctx context.Context) {
	for _, ctr := range r.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a stage, scoped to this resource and
// platform.
func (r *recipe) containerID(name string, index int, platform string) string {
	slug := platformSlug(platform)
	if name != "" {
		return fmt.Sprintf("%s-%s-stage-%s", r.resource, slug, name)
	}
	return fmt.Sprintf("%s-%s-stage-%d", r.resource, slug, index+1)
}

// Returns the output directory for a specific platform.
//
// A single-platform build writes directly to the output directory to
// preserve the {output}/image.tar convention. Multi-platform builds get a
// subdirectory per platform (e.g., {output}/linux-amd64).
func (r *recipe) platformOutput(platform string) string {
	if len(r.platforms) == 1 {
		return r.output
	}
	return filepath.Join(r.output, platformSlug(platform))
}

// Converts a platform string to a filesystem-safe slug.
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}

// Returns a label for a stage, preferring the name when available and
// falling back to the 1-based index.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
