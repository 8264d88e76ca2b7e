package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/oakmill/wheelwright/internal/build"
	"github.com/oakmill/wheelwright/internal/manifest"
	"github.com/oakmill/wheelwright/internal/source"
	"github.com/oakmill/wheelwright/internal/wheel"
)

// Represents the 'wheelwright wheel' command.
//
// Generates and executes the built-in two-stage Python wheel recipe: the
// builder stage packages the context as a wheel, the runtime stage installs
// it and exposes the distribution's console script as the entrypoint.
type WheelCmd struct {
	Distribution string `arg:"" help:"Distribution name of the packaged project."`
	Context      string `short:"c" help:"Build context: a directory or a git URL (with optional #branch)." default:"."`
	Output       string `short:"o" help:"Output directory." default:"build"`
	Script       string `help:"Console script to use as the entrypoint. Defaults to the distribution name."`
	Tag          string `help:"Version recorded on the exported image." placeholder:"VERSION"`
	BaseImage    string `help:"Base image for both stages." placeholder:"REF"`
	Arch         string `help:"Target architecture (e.g. arm64)."`

	ContainerdAddress   string `help:"Containerd socket address." default:"/run/containerd/containerd.sock"`
	ContainerdNamespace string `help:"Containerd namespace." default:"wheelwright"`
}

// Executes the wheel command.
//
// After the build, the collected dist directory must hold exactly one
// wheel; the command fails otherwise. A SHA256SUMS manifest covering the
// wheel and the exported image is written to the output directory.
func (c *WheelCmd) Run(ctx context.Context) error {
	recipe := manifest.Wheel(manifest.WheelOptions{
		Distribution: c.Distribution,
		Script:       c.Script,
		Version:      c.Tag,
		BaseImage:    c.BaseImage,
		Arch:         c.Arch,
	})

	expanded, err := recipe.Expand(nil)
	if err != nil {
		return err
	}
	if err := expanded.Validate(); err != nil {
		return err
	}

	checkout, err := source.Resolve(ctx, c.Context, filepath.Join(c.Output, ".context"))
	if err != nil {
		return err
	}

	platform := "linux/" + expanded.Args[manifest.ArgArch]

	result, err := runLocalBuild(ctx, buildJob{
		recipe:    expanded,
		resource:  c.Distribution,
		output:    c.Output,
		root:      checkout.Dir,
		platforms: []string{platform},
		collect: []build.Collect{
			{Stage: manifest.WheelBuilderStage, Path: manifest.WheelDistPath},
		},
		commit:              checkout.Commit,
		containerdAddress:   c.ContainerdAddress,
		containerdNamespace: c.ContainerdNamespace,
	})
	if err != nil {
		return err
	}

	whl, err := wheel.ExactlyOne(filepath.Join(c.Output, "dist"))
	if err != nil {
		return err
	}

	info, err := wheel.ParseFilename(filepath.Base(whl))
	if err != nil {
		return err
	}
	slog.Info("wheel built",
		"distribution", info.Distribution,
		"version", info.Version,
		"python", info.Python,
	)

	sums, err := wheel.WriteSums(c.Output, result.Artifacts)
	if err != nil {
		return fmt.Errorf("write checksum manifest: %w", err)
	}
	slog.Info("checksums written", "path", sums)

	return nil
}
