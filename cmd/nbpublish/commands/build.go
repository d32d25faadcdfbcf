package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/nbpublish/internal/build"
	"git.home.luguber.info/inful/nbpublish/internal/config"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

// BuildCmd implements the 'build' command, the default when no command is given.
type BuildCmd struct {
	Output        string `short:"o" help:"Output directory (overrides output_dir)"`
	WorkDir       string `name:"workdir" help:"Directory section folders are resolved against" type:"path"`
	Manifest      string `name:"manifest" help:"Write a JSON build manifest to this path"`
	MetricsFile   string `name:"metrics-file" help:"Write Prometheus text-format metrics to this path"`
	SkipLinkCheck bool   `name:"skip-link-check" help:"Do not verify local links in generated pages"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	_, err := RunBuild(context.Background(), os.Stdout, root.Config, b)
	return err
}

// RunBuild loads the configuration at configPath and runs one publication.
func RunBuild(ctx context.Context, out io.Writer, configPath string, b *BuildCmd) (*build.BuildResult, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return runWithConfig(ctx, out, cfg, b)
}

func runWithConfig(ctx context.Context, out io.Writer, cfg *config.Config, b *BuildCmd) (*build.BuildResult, error) {
	req := build.BuildRequest{
		Config:    cfg,
		WorkDir:   b.WorkDir,
		OutputDir: ResolveOutputDir(b.Output, cfg),
		Options: build.BuildOptions{
			ManifestPath:  b.Manifest,
			MetricsPath:   b.MetricsFile,
			SkipLinkCheck: b.SkipLinkCheck,
		},
	}
	slog.Debug("Starting build", logfields.Output(req.OutputDir), logfields.Count(len(cfg.Sections)))
	return build.NewService().WithOutput(out).Run(ctx, req)
}
