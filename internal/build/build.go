package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/oakmill/wheelwright/internal/manifest"
	"github.com/oakmill/wheelwright/internal/metrics"
	"github.com/oakmill/wheelwright/internal/runtime"
)

// Default permission mode for created output directories.
const outputDirMode os.FileMode = 0o755

// Controls recipe execution.
type Options struct {
	Recipe     *manifest.Recipe  // Expanded recipe to execute.
	Resource   string            // Resource name, used as a prefix for container IDs.
	Output     string            // Directory for exported images and collected artifacts.
	Root       string            // Build context root, for resolving copy sources.
	Entrypoint []string          // Entrypoint override. Empty uses the recipe's entrypoint.
	Platforms  []string          // Target platforms (e.g., ["linux/amd64"]). Defaults to host.
	Labels     map[string]string // Extra image labels, merged over the recipe's labels.
	Collect    []Collect         // Paths to pull out of stages after their steps run.
	Metrics    metrics.Recorder  // Receives stage and build timings. Nil disables recording.
}

// Names a path to copy from a stage container to the host output
// directory once the stage's steps have completed.
type Collect struct {
	Stage string // Stage name to collect from.
	Path  string // Absolute path inside the stage container.
}

// Returned after successful recipe execution.
type Result struct {
	Output    string   // Directory containing the build outputs.
	Artifacts []string // Files written under the output directory.
}

// Executes a recipe against the container runtime.
//
// Stages are built in declaration order for each target platform. Each
// stage starts a container from its base, executes the stage's steps, and
// every non-transient stage is exported as an OCI image to the output
// directory. Any step failure aborts the build.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{"linux/" + goruntime.GOARCH}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}

	slog.Info("executing recipe",
		"resource", opts.Resource,
		"output", opts.Output,
		"stages", len(opts.Recipe.Stages),
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, outputDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	start := time.Now()
	result, err := newRecipe(rt, opts).build(ctx, opts.Recipe.Stages)

	opts.Metrics.ObserveBuildDuration(time.Since(start))
	if err != nil {
		opts.Metrics.IncBuildOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	opts.Metrics.IncBuildOutcome(metrics.OutcomeSuccess)

	return result, nil
}
