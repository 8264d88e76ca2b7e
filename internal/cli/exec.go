package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oakmill/wheelwright/internal/build"
	"github.com/oakmill/wheelwright/internal/history"
	"github.com/oakmill/wheelwright/internal/manifest"
	"github.com/oakmill/wheelwright/internal/paths"
	"github.com/oakmill/wheelwright/internal/runtime"
	"github.com/oakmill/wheelwright/internal/verify"
)

// Debounce interval for watch-mode rebuilds.
const watchDebounce = 500 * time.Millisecond

// Describes a build executed directly against containerd.
type buildJob struct {
	recipe              *manifest.Recipe
	resource            string
	output              string
	root                string
	entrypoint          []string
	platforms           []string
	collect             []build.Collect
	commit              string
	containerdAddress   string
	containerdNamespace string
}

// Connects to containerd, runs the job, and records the outcome in the
// local history database.
func runLocalBuild(ctx context.Context, job buildJob) (*build.Result, error) {
	rt, err := runtime.New(job.containerdAddress, job.containerdNamespace)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	start := time.Now()
	result, err := build.Run(ctx, rt, build.Options{
		Recipe:     job.recipe,
		Resource:   job.resource,
		Output:     job.output,
		Root:       job.root,
		Entrypoint: job.entrypoint,
		Platforms:  job.platforms,
		Collect:    job.collect,
	})

	rec := history.Record{
		Resource:  job.resource,
		Platforms: job.platforms,
		Status:    history.StatusSuccess,
		Duration:  time.Since(start),
		Commit:    job.commit,
	}
	if hash, hashErr := job.recipe.Hash(); hashErr == nil {
		rec.RecipeHash = hash
	}
	if err != nil {
		rec.Status = history.StatusFailed
	} else {
		rec.Artifacts = result.Artifacts
	}
	appendHistory(ctx, rec)

	if err != nil {
		return nil, err
	}

	slog.Info("build complete", "output", result.Output, "artifacts", len(result.Artifacts))
	return result, nil
}

// Appends a record to the local history database. History is best-effort
// from the CLI; a failed write never fails the build.
func appendHistory(ctx context.Context, rec history.Record) {
	if err := os.MkdirAll(paths.Data(), paths.DefaultDirMode); err != nil {
		slog.Warn("failed to create data directory", "error", err)
		return
	}

	store, err := history.Open(paths.HistoryDB())
	if err != nil {
		slog.Warn("failed to open history database", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.Append(ctx, rec); err != nil {
		slog.Warn("failed to append build record", "error", err)
	}
}

// Verifies a local base archive against its detached signature.
//
// The signature is expected next to the archive with an .asc suffix.
func verifyArchive(archive, keyring string) error {
	signature := archive + ".asc"
	if err := verify.DetachedSignature(archive, signature, keyring); err != nil {
		return err
	}
	slog.Info("base archive signature verified", "archive", filepath.Base(archive))
	return nil
}

// Coalesces bursts of filesystem events into a single rebuild.
type debouncer struct {
	timer *time.Timer
}

func newDebouncer() *debouncer {
	t := time.NewTimer(watchDebounce)
	if !t.Stop() {
		<-t.C
	}
	return &debouncer{timer: t}
}

// Starts (or restarts) the debounce interval.
func (d *debouncer) trigger() {
	d.timer.Reset(watchDebounce)
}

// Fires once the interval elapses without another trigger.
func (d *debouncer) fired() <-chan time.Time {
	return d.timer.C
}

func (d *debouncer) stop() {
	d.timer.Stop()
}
