package notebook

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/nbpublish/internal/archive"
	"git.home.luguber.info/inful/nbpublish/internal/config"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
)

// Output file name suffixes.
const (
	AnswersSuffix = "-ANSWERS.ipynb"
	DataSuffix    = "-data.zip"
)

// Transformer produces exercise and answer variants of annotated notebooks.
type Transformer struct {
	githubRepo     string
	defaultInstall string
}

// NewTransformer creates a Transformer using the repository and install
// defaults of cfg.
func NewTransformer(cfg *config.Config) *Transformer {
	install := cfg.DefaultInstall
	if install == "" {
		install = config.DefaultInstall
	}
	return &Transformer{githubRepo: cfg.GitHubRepo, defaultInstall: install}
}

// Process publishes the notebook at path into outputDir.
//
// Notebooks without workshop metadata are skipped: Process returns nil and no
// files are written. Malformed notebook JSON is a fatal error.
func (t *Transformer) Process(path, outputDir string) (*publish.Item, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path discovered in a configured section folder
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read notebook").
			Fatal().WithContext("path", path).Build()
	}

	nb, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotebook, "malformed notebook JSON").
			Fatal().WithContext("path", path).Build()
	}

	ws, err := nb.Workshop()
	if err != nil {
		slog.Warn("Skipping notebook with invalid workshop metadata", logfields.Path(path), logfields.Error(err))
		return nil, nil
	}
	if ws == nil {
		slog.Info("Skipping notebook without workshop metadata", logfields.Path(path))
		return nil, nil
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	notebookDir := filepath.Dir(path)

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			Fatal().WithContext("path", outputDir).Build()
	}

	complete := nb.Clone()
	exercise := StripSolutions(nb.Clone())

	item := &publish.Item{
		Name:          baseName,
		Title:         ws.Title,
		Description:   ws.Description,
		Kind:          publish.KindNotebook,
		ExerciseFile:  baseName + ".ipynb",
		AnswersFile:   baseName + AnswersSuffix,
		Section:       filepath.Base(notebookDir),
		SectionFolder: notebookDir,
		Order:         ws.Order,
		Links:         ws.Links,
	}
	if item.Title == "" {
		item.Title = baseName
	}

	if len(ws.DataFiles) > 0 {
		zipName := baseName + DataSuffix
		install := ws.Install.Join()
		if install == "" {
			install = t.defaultInstall
		}
		setup := SetupCell(zipName, t.githubRepo, install, ws.Links)
		if nb.SupportsCellIDs() {
			setup.ID = SetupCellID
		}

		pos := complete.FirstMarkdownIndex() + 1
		complete.InsertCell(pos, setup.Clone())
		exercise.InsertCell(pos, setup)

		res, err := archive.Build(ws.DataFiles, filepath.Join(outputDir, zipName), notebookDir)
		if err != nil {
			return nil, err
		}
		item.DataFile = zipName
		item.DataEntries = res.Entries
	}

	if err := writeNotebook(filepath.Join(outputDir, item.ExerciseFile), exercise); err != nil {
		return nil, err
	}
	if err := writeNotebook(filepath.Join(outputDir, item.AnswersFile), complete); err != nil {
		return nil, err
	}

	fp, err := publish.Fingerprint(ws.Fields, data)
	if err != nil {
		slog.Debug("Fingerprint unavailable", logfields.Path(path), logfields.Error(err))
	}
	item.Fingerprint = fp
	return item, nil
}

// StripSolutions replaces every cell tagged solution with an empty code cell
// and returns nb.
func StripSolutions(nb *Notebook) *Notebook {
	for i, cell := range nb.Cells {
		if cell.HasTag(SolutionTag) {
			nb.Cells[i] = EmptyCodeCell(cell.ID)
		}
	}
	return nb
}

func writeNotebook(path string, nb *Notebook) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(nb); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotebook, "encode notebook").
			Fatal().WithContext("path", path).Build()
	}
	// #nosec G306 -- published notebooks are world readable
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write notebook").
			Fatal().WithContext("path", path).Build()
	}
	slog.Info("Created notebook", logfields.Output(path))
	return nil
}
