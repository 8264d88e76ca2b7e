package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/oakmill/wheelwright/internal/manifest"
	"github.com/oakmill/wheelwright/internal/protocol"
	"github.com/oakmill/wheelwright/internal/source"
)

// Represents the 'wheelwright build' command.
type BuildCmd struct {
	Recipe     string            `arg:"" help:"Recipe file to execute." type:"existingfile"`
	Context    string            `short:"c" help:"Build context: a directory or a git URL (with optional #branch)." default:"."`
	Output     string            `short:"o" help:"Output directory." default:"build"`
	Arg        map[string]string `help:"Build arg overrides." placeholder:"NAME=VALUE"`
	EnvFile    string            `help:"Read build arg overrides from a dotenv file." placeholder:"FILE"`
	Platform   []string          `short:"p" help:"Target platform, repeatable (e.g. linux/arm64)." placeholder:"OS/ARCH"`
	Entrypoint []string          `help:"Entrypoint override for exported images." placeholder:"ARG"`
	Keyring    string            `help:"Armored keyring for verifying signed local base archives." placeholder:"FILE"`
	Watch      bool              `short:"w" help:"Rebuild whenever the context changes."`
	Remote     bool              `help:"Submit the build to the daemon instead of running it locally."`

	ContainerdAddress   string `help:"Containerd socket address." default:"/run/containerd/containerd.sock"`
	ContainerdNamespace string `help:"Containerd namespace." default:"wheelwright"`
}

// Executes the build command.
func (c *BuildCmd) Run(ctx context.Context) error {
	recipe, err := manifest.Load(c.Recipe)
	if err != nil {
		return err
	}

	overrides, err := c.overrides()
	if err != nil {
		return err
	}

	resource := strings.TrimSuffix(filepath.Base(c.Recipe), filepath.Ext(c.Recipe))

	checkout, err := source.Resolve(ctx, c.Context, filepath.Join(c.Output, ".context"))
	if err != nil {
		return err
	}

	if c.Remote {
		return c.submit(recipe, resource, checkout, overrides)
	}

	expanded, err := recipe.Expand(overrides)
	if err != nil {
		return err
	}
	if err := expanded.Validate(); err != nil {
		return err
	}

	if c.Keyring != "" {
		if err := verifyBases(expanded, c.Keyring); err != nil {
			return err
		}
	}

	job := buildJob{
		recipe:              expanded,
		resource:            resource,
		output:              c.Output,
		root:                checkout.Dir,
		entrypoint:          c.Entrypoint,
		platforms:           c.Platform,
		commit:              checkout.Commit,
		containerdAddress:   c.ContainerdAddress,
		containerdNamespace: c.ContainerdNamespace,
	}

	if _, err := runLocalBuild(ctx, job); err != nil {
		return err
	}

	if c.Watch {
		return watchAndRebuild(ctx, checkout.Dir, c.Output, func(ctx context.Context) error {
			_, err := runLocalBuild(ctx, job)
			return err
		})
	}

	return nil
}

// Sends the unexpanded recipe to the daemon for execution.
//
// Arg expansion happens on the daemon so its history records the recipe
// as submitted. The context is resolved locally first; the daemon shares
// the filesystem with the CLI.
func (c *BuildCmd) submit(recipe *manifest.Recipe, resource string, checkout *source.Checkout, overrides map[string]string) error {
	output, err := filepath.Abs(c.Output)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(checkout.Dir)
	if err != nil {
		return err
	}

	env, err := roundTrip(protocol.CmdBuild, &protocol.BuildRequest{
		Recipe:     recipe,
		Resource:   resource,
		Output:     output,
		Root:       root,
		Entrypoint: c.Entrypoint,
		Platforms:  c.Platform,
		Args:       overrides,
	})
	if err != nil {
		return err
	}

	result, err := protocol.DecodePayload[protocol.BuildResult](env.Payload)
	if err != nil {
		return err
	}

	slog.Info("build complete", "output", result.Output, "artifacts", len(result.Artifacts))
	return nil
}

// Merges arg overrides from the env file and the --arg flags. Flags win.
func (c *BuildCmd) overrides() (map[string]string, error) {
	overrides := make(map[string]string)

	if c.EnvFile != "" {
		fromFile, err := godotenv.Read(c.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", c.EnvFile, err)
		}
		for k, v := range fromFile {
			overrides[k] = v
		}
	}

	for k, v := range c.Arg {
		overrides[k] = v
	}

	return overrides, nil
}

// Verifies detached signatures on stage bases that are local archives.
//
// Registry references are skipped; only bases that resolve to a file on
// the host are checked, against an armored signature at <archive>.asc.
func verifyBases(recipe *manifest.Recipe, keyring string) error {
	checked := make(map[string]bool)

	for _, stage := range recipe.Stages {
		if checked[stage.From] {
			continue
		}
		info, err := os.Stat(stage.From)
		if err != nil || info.IsDir() {
			continue
		}
		checked[stage.From] = true

		if err := verifyArchive(stage.From, keyring); err != nil {
			return err
		}
	}

	return nil
}

// Watches the context directory and re-runs the build on changes.
//
// Events are debounced: a rebuild starts only after the context has been
// quiet for the debounce interval. The output directory and .git are not
// watched. Blocks until the context is cancelled.
func watchAndRebuild(ctx context.Context, contextDir, outputDir string, rebuild func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchTree(watcher, contextDir, outputDir); err != nil {
		return err
	}

	slog.Info("watching for changes", "context", contextDir)

	debounce := newDebouncer()
	defer debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be added to the watch set.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watchTree(watcher, event.Name, outputDir)
				}
			}
			debounce.trigger()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-debounce.fired():
			slog.Info("context changed, rebuilding")
			if err := rebuild(ctx); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
		}
	}
}

// Adds a directory tree to the watcher, skipping .git and the output
// directory.
func watchTree(watcher *fsnotify.Watcher, root, outputDir string) error {
	absOutput, _ := filepath.Abs(outputDir)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if abs, err := filepath.Abs(path); err == nil && abs == absOutput {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
