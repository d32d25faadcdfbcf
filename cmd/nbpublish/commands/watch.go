package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/nbpublish/internal/config"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
	"git.home.luguber.info/inful/nbpublish/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildCmd `embed:""`

	Debounce time.Duration `help:"Quiet period after the last change before republishing" default:"500ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunWatch(ctx, os.Stdout, root.Config, w)
}

// RunWatch publishes once and then republishes on every relevant change
// until ctx is cancelled. Failed rebuilds are logged and watching continues;
// only a failure to load the configuration up front is returned.
func RunWatch(ctx context.Context, out io.Writer, configPath string, w *WatchCmd) error {
	workDir, err := watchWorkDir(w.WorkDir)
	if err != nil {
		return err
	}
	opts := w.BuildCmd
	opts.WorkDir = workDir

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) ([]string, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if _, err := runWithConfig(ctx, out, cfg, &opts); err != nil {
			return nil, err
		}
		return sectionDirs(cfg, workDir), nil
	}

	ignored := []string{absUnder(workDir, ResolveOutputDir(opts.Output, cfg))}
	for _, p := range []string{opts.Manifest, opts.MetricsFile} {
		if p != "" {
			ignored = append(ignored, absUnder(workDir, p))
		}
	}

	watcher, err := watch.New(configPath, rebuild, watch.WithDebounce(w.Debounce), watch.WithIgnored(ignored...))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "start file watcher").Fatal().Build()
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			slog.Debug("Failed to close watcher", logfields.Error(cerr))
		}
	}()

	if _, err := runWithConfig(ctx, out, cfg, &opts); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}
	if err := watcher.Watch(sectionDirs(cfg, workDir)...); err != nil {
		slog.Warn("Failed to watch section folders", logfields.Error(err))
	}
	return watcher.Run(ctx)
}

func watchWorkDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryRuntime, "determine working directory").Fatal().Build()
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve working directory").
			Fatal().WithContext("path", dir).Build()
	}
	return abs, nil
}
