package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/nbpublish/internal/config"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/index"
	"git.home.luguber.info/inful/nbpublish/internal/linkcheck"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
	"git.home.luguber.info/inful/nbpublish/internal/manifest"
	"git.home.luguber.info/inful/nbpublish/internal/markdown"
	"git.home.luguber.info/inful/nbpublish/internal/metrics"
	"git.home.luguber.info/inful/nbpublish/internal/notebook"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
	"git.home.luguber.info/inful/nbpublish/internal/render"
	"git.home.luguber.info/inful/nbpublish/internal/version"
)

const checkpointDir = ".ipynb_checkpoints"

// Service runs the publication pipeline.
type Service struct {
	renderer *render.Renderer
	recorder metrics.Recorder
	out      io.Writer
}

// NewService creates a Service with the goldmark renderer, no metrics and
// progress messages on stdout.
func NewService() *Service {
	return &Service{
		renderer: render.New(),
		recorder: metrics.NoopRecorder{},
		out:      os.Stdout,
	}
}

// WithRenderer replaces the page renderer.
func (s *Service) WithRenderer(r *render.Renderer) *Service {
	s.renderer = r
	return s
}

// WithRecorder sets the metrics recorder used when no metrics file is requested.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	s.recorder = r
	return s
}

// WithOutput redirects user-facing progress messages.
func (s *Service) WithOutput(w io.Writer) *Service {
	s.out = w
	return s
}

// Run executes a complete publication run.
func (s *Service) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	result := &BuildResult{StartTime: time.Now()}

	recorder := s.recorder
	var promRecorder *metrics.PrometheusRecorder
	if req.Options.MetricsPath != "" {
		promRecorder = metrics.NewPrometheusRecorder(nil)
		recorder = promRecorder
	}

	finish := func(status BuildStatus, outcome metrics.BuildOutcomeLabel, err error) (*BuildResult, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		recorder.ObserveBuildDuration(result.Duration)
		recorder.IncBuildOutcome(outcome)
		if promRecorder != nil {
			path := resolve(req.WorkDir, req.Options.MetricsPath)
			if werr := promRecorder.WriteTextfile(path); werr != nil {
				slog.Warn("Failed to write metrics file", logfields.Path(path), logfields.Error(werr))
			}
		}
		return result, err
	}
	fail := func(err error) (*BuildResult, error) {
		return finish(BuildStatusFailed, metrics.BuildOutcomeFailed, err)
	}

	cfg := req.Config
	if cfg == nil {
		return fail(ferrors.WrapError(ErrNoConfig, ferrors.CategoryConfig, "configuration required").Fatal().Build())
	}

	workDir, err := workingDir(req.WorkDir)
	if err != nil {
		return fail(err)
	}
	req.WorkDir = workDir

	displayOut := cfg.OutputDir
	if req.OutputDir != "" {
		displayOut = req.OutputDir
	}
	outputDir := resolve(workDir, displayOut)
	result.OutputPath = outputDir

	if err := prepareOutputDir(outputDir, workDir); err != nil {
		return fail(err)
	}

	if len(cfg.Sections) == 0 {
		slog.Warn("No sections defined in configuration")
		return finish(BuildStatusEmpty, metrics.BuildOutcomeEmpty, nil)
	}

	notebooks := notebook.NewTransformer(cfg)
	documents := markdown.NewTransformer(s.renderer)

	for _, section := range cfg.Sections {
		folder := resolve(workDir, section.Folder)
		info, statErr := os.Stat(folder)
		if section.Folder == "" || statErr != nil || !info.IsDir() {
			slog.Warn("Section folder not found", logfields.Folder(section.Folder), logfields.Section(section.Title))
			recorder.IncInputSkipped(metrics.SkipMissingFolder)
			result.InputsSkipped++
			continue
		}

		nbPaths, mdPaths, err := discover(folder)
		if err != nil {
			return fail(ferrors.WrapError(fmt.Errorf("%w: %w", ErrDiscoveryFailure, err), ferrors.CategoryFileSystem, "list section folder").
				Fatal().WithContext("folder", folder).Build())
		}

		inputs := make([]input, 0, len(nbPaths)+len(mdPaths))
		for _, p := range nbPaths {
			inputs = append(inputs, input{path: p, kind: publish.KindNotebook})
		}
		for _, p := range mdPaths {
			inputs = append(inputs, input{path: p, kind: publish.KindMarkdown})
		}

		for _, in := range inputs {
			if ctx.Err() != nil {
				return finish(BuildStatusCancelled, metrics.BuildOutcomeCanceled, ctx.Err())
			}

			slog.Info("Processing", logfields.Path(in.path), logfields.Kind(string(in.kind)))
			var item *publish.Item
			if in.kind == publish.KindNotebook {
				item, err = notebooks.Process(in.path, outputDir)
			} else {
				item, err = documents.Process(in.path, outputDir)
			}
			if err != nil {
				return fail(err)
			}
			if item == nil {
				recorder.IncInputSkipped(metrics.SkipNoMetadata)
				result.InputsSkipped++
				continue
			}

			item.Section = section.Title
			item.SectionFolder = section.Folder
			recorder.IncItemPublished(string(item.Kind))
			recorder.AddArchiveFiles(len(item.DataEntries))
			result.Items = append(result.Items, item)
		}
	}

	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(s.out, "No items were published; skipping index.")
		s.printSummary(len(result.Items), displayOut)
		return finish(BuildStatusEmpty, metrics.BuildOutcomeEmpty, nil)
	}

	indexPath, err := index.NewBuilder(cfg, s.renderer).Build(result.Items, outputDir)
	if err != nil {
		return fail(err)
	}
	result.IndexPath = indexPath

	if !req.Options.SkipLinkCheck {
		pages := []string{index.FileName}
		for _, item := range result.Items {
			if item.HTMLFile != "" {
				pages = append(pages, item.HTMLFile)
			}
		}
		broken, err := linkcheck.CheckPages(outputDir, pages...)
		if err != nil {
			slog.Warn("Link check failed", logfields.Error(err))
		}
		result.BrokenLinks = len(broken)
		recorder.AddBrokenLinks(len(broken))
	}

	if req.Options.ManifestPath != "" {
		if err := s.writeManifest(cfg, result, resolve(workDir, req.Options.ManifestPath)); err != nil {
			return fail(err)
		}
	}

	s.printSummary(len(result.Items), displayOut)
	return finish(BuildStatusSuccess, metrics.BuildOutcomeSuccess, nil)
}

type input struct {
	path string
	kind publish.Kind
}

func (s *Service) printSummary(n int, outputDir string) {
	_, _ = fmt.Fprintf(s.out, "✓ Published %d items to %s/\n", n, strings.TrimSuffix(filepath.ToSlash(outputDir), "/"))
}

func (s *Service) writeManifest(cfg *config.Config, result *BuildResult, path string) error {
	m := manifest.New(cfg, result.Items)
	m.Version = version.Resolved()
	if err := m.HashArtifacts(result.OutputPath); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, "hash published files").Fatal().Build()
	}
	m.Status = string(BuildStatusSuccess)
	m.Duration = time.Since(result.StartTime).Milliseconds()
	if err := m.Write(path); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write manifest").
			Fatal().WithContext("path", path).Build()
	}
	slog.Info("Wrote build manifest", logfields.Output(path), slog.String("id", m.ID))
	return nil
}

// discover lists notebooks and markdown documents directly inside folder,
// each group in lexical order. Symlinks to regular files are followed.
func discover(folder string) (notebooks, documents []string, err error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), checkpointDir) || !isRegularFile(folder, e) {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".ipynb":
			notebooks = append(notebooks, filepath.Join(folder, e.Name()))
		case ".md":
			documents = append(documents, filepath.Join(folder, e.Name()))
		}
	}
	sort.Strings(notebooks)
	sort.Strings(documents)
	return notebooks, documents, nil
}

func isRegularFile(folder string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(folder, e.Name()))
	if err != nil {
		slog.Debug("Skipping unresolvable symlink", logfields.Path(filepath.Join(folder, e.Name())), logfields.Error(err))
		return false
	}
	return info.Mode().IsRegular()
}

// prepareOutputDir removes any previous run's output and recreates the directory.
func prepareOutputDir(outputDir, workDir string) error {
	if containsPath(outputDir, workDir) {
		return ferrors.WrapError(ErrUnsafeOutputDir, ferrors.CategoryValidation, "refusing to clean output directory").
			Fatal().WithContext("output", outputDir).WithContext("workdir", workDir).Build()
	}

	if _, err := os.Stat(outputDir); err == nil {
		if err := os.RemoveAll(outputDir); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove previous output").
				Fatal().WithContext("path", outputDir).Build()
		}
		slog.Info("Cleaned up previous output", logfields.Path(outputDir))
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			Fatal().WithContext("path", outputDir).Build()
	}
	return nil
}

// containsPath reports whether child is parent or lies below it.
func containsPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func workingDir(dir string) (string, error) {
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

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
