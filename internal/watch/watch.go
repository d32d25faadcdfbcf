// Package watch rebuilds the publication when its sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc runs a full build and returns the source directories that
// should be watched from now on.
type RebuildFunc func(ctx context.Context) ([]string, error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnored excludes paths (files or directories) from triggering rebuilds,
// typically the output directory and generated manifest or metrics files.
func WithIgnored(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				w.ignored = append(w.ignored, abs)
			}
		}
	}
}

// Watcher monitors the configuration file and section folders.
type Watcher struct {
	fs         *fsnotify.Watcher
	configPath string
	rebuild    RebuildFunc
	debounce   time.Duration
	ignored    []string
	watched    map[string]struct{}
	sections   map[string]struct{}
}

// New creates a Watcher for configPath. Section folders are added with Watch.
func New(configPath string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:         fw,
		configPath: absConfig,
		rebuild:    rebuild,
		debounce:   DefaultDebounce,
		watched:    make(map[string]struct{}),
		sections:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	// Watch the directory containing the config file (more reliable than the
	// file itself across editor save strategies).
	if err := w.add(filepath.Dir(absConfig)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Watch adds dirs and their subdirectories. Missing directories are skipped.
func (w *Watcher) Watch(dirs ...string) error {
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		if err := w.addTree(abs); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (w.isIgnored(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		w.sections[path] = struct{}{}
		return w.add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) add(dir string) error {
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	slog.Debug("Watching directory", logfields.Path(dir))
	return nil
}

// Run processes file events until ctx is cancelled, rebuilding once changes
// have settled. Rebuild errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.Close() }()
	slog.Info("Watching for changes", logfields.Path(w.configPath), logfields.Count(len(w.watched)))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.Relevant(event) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			w.runRebuild(ctx)
		}
	}
}

func (w *Watcher) runRebuild(ctx context.Context) {
	start := time.Now()
	dirs, err := w.rebuild(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	if err := w.Watch(dirs...); err != nil {
		slog.Warn("Failed to update watched directories", logfields.Error(err))
	}
}

// Relevant reports whether an event should trigger a rebuild. In the
// configuration directory only the configuration and .env files count; in
// section folders anything except ignored paths, hidden files and editor
// backups does.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	path := event.Name
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if path == w.configPath {
		return true
	}
	if w.isIgnored(path) {
		return false
	}

	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)
	if dir == filepath.Dir(w.configPath) && (name == ".env" || name == ".env.local") {
		return true
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	_, inSection := w.sections[dir]
	return inSection
}

func (w *Watcher) isIgnored(path string) bool {
	for _, ig := range w.ignored {
		if path == ig || strings.HasPrefix(path, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
