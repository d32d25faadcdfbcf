package notebook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/nbpublish/internal/config"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
)

const lessonNotebook = `{
 "cells": [
  {"cell_type": "code", "id": "c0", "metadata": {}, "source": ["import pandas as pd\n"], "execution_count": 1, "outputs": []},
  {"cell_type": "markdown", "id": "c1", "metadata": {}, "source": "# Lesson\nRead the <b>data</b>."},
  {"cell_type": "code", "id": "c2", "metadata": {"tags": ["solution"]}, "source": ["df = pd.read_csv('a.csv')\n", "df.head()"], "execution_count": 2,
   "outputs": [{"output_type": "execute_result", "data": {"text/plain": ["1"]}, "metadata": {}, "execution_count": 2}]},
  {"cell_type": "code", "id": "c3", "metadata": {"tags": ["keep"]}, "source": [], "execution_count": null, "outputs": []},
  {"cell_type": "markdown", "id": "c4", "metadata": {"tags": ["solution", "extra"]}, "source": ["The answer is 42."]}
 ],
 "metadata": {
  "kernelspec": {"name": "python3", "display_name": "Python 3"},
  "workshop": {
   "title": "Reading CSVs",
   "description": "Load a CSV with pandas.",
   "order": 2,
   "data_files": ["data/*.csv"],
   "links": [{"name": "Docs", "url": "https://pandas.pydata.org", "description": "pandas"}, {"url": "https://example.com"}]
  }
 },
 "nbformat": 4,
 "nbformat_minor": 5
}
`

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.GitHubRepo = "birn/workshop"
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readNotebook(t *testing.T, path string) *Notebook {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	nb, err := Parse(data)
	require.NoError(t, err)
	return nb
}

func countTagged(nb *Notebook, tag string) int {
	n := 0
	for _, c := range nb.Cells {
		if c.HasTag(tag) {
			n++
		}
	}
	return n
}

func TestProcess_StripsSolutionsAndInsertsSetupCell(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	nbPath := filepath.Join(src, "intro", "01-csv.ipynb")
	writeFile(t, nbPath, lessonNotebook)
	writeFile(t, filepath.Join(src, "intro", "data", "a.csv"), "x\n1\n")
	writeFile(t, filepath.Join(src, "intro", "data", "b.csv"), "x\n2\n")

	item, err := NewTransformer(newTestConfig()).Process(nbPath, out)
	require.NoError(t, err)
	require.NotNil(t, item)

	require.Equal(t, "01-csv", item.Name)
	require.Equal(t, "Reading CSVs", item.Title)
	require.Equal(t, "Load a CSV with pandas.", item.Description)
	require.Equal(t, publish.KindNotebook, item.Kind)
	require.Equal(t, "01-csv.ipynb", item.ExerciseFile)
	require.Equal(t, "01-csv-ANSWERS.ipynb", item.AnswersFile)
	require.Equal(t, "01-csv-data.zip", item.DataFile)
	require.Equal(t, "intro", item.Section)
	require.NotNil(t, item.Order)
	require.InDelta(t, 2.0, *item.Order, 0)
	require.Len(t, item.Links, 2)
	require.NotEmpty(t, item.Fingerprint)

	exercise := readNotebook(t, filepath.Join(out, "01-csv.ipynb"))
	complete := readNotebook(t, filepath.Join(out, "01-csv-ANSWERS.ipynb"))

	require.Len(t, complete.Cells, 6)
	require.Len(t, exercise.Cells, len(complete.Cells))
	require.Zero(t, countTagged(exercise, SolutionTag))
	require.Equal(t, 2, countTagged(complete, SolutionTag))

	// Setup cell follows the first markdown cell in both variants.
	for _, nb := range []*Notebook{exercise, complete} {
		setup := nb.Cells[2]
		require.Equal(t, SetupCellID, setup.ID)
		require.Equal(t, CellCode, setup.CellType)
		require.Contains(t, setup.Source.Text(), "https://github.com/birn/workshop/releases/latest/download/01-csv-data.zip")
		require.Contains(t, setup.Source.Text(), "# - Docs: https://pandas.pydata.org (pandas)\n")
		require.Contains(t, setup.Source.Text(), "# - Link: https://example.com\n")
	}

	blanked := exercise.Cells[3]
	require.Equal(t, "c2", blanked.ID)
	require.Equal(t, CellCode, blanked.CellType)
	require.Empty(t, blanked.Source)
	require.Empty(t, blanked.Outputs)
	require.Nil(t, blanked.ExecutionCount)

	mdSolution := exercise.Cells[5]
	require.Equal(t, "c4", mdSolution.ID)
	require.Equal(t, CellCode, mdSolution.CellType)

	require.Equal(t, []string{"keep"}, exercise.Cells[4].Tags())
	require.Equal(t, "df = pd.read_csv('a.csv')\ndf.head()", complete.Cells[3].Source.Text())

	zr, err := zip.OpenReader(filepath.Join(out, "01-csv-data.zip"))
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"data/a.csv", "data/b.csv"}, names)
	require.Equal(t, names, item.DataEntries)
}

func TestProcess_WritesStableJSON(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	nbPath := filepath.Join(src, "intro", "lesson.ipynb")
	writeFile(t, nbPath, lessonNotebook)
	writeFile(t, filepath.Join(src, "intro", "data", "a.csv"), "x\n")

	_, err := NewTransformer(newTestConfig()).Process(nbPath, out)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "lesson-ANSWERS.ipynb"))
	require.NoError(t, err)
	text := string(data)

	require.True(t, strings.HasSuffix(text, "}\n"))
	require.True(t, strings.HasPrefix(text, "{\n \"cells\": [\n  {\n"))
	require.Contains(t, text, "Read the <b>data</b>.")
	require.Contains(t, text, "✓ Data files extracted!")
	require.Contains(t, text, `"kernelspec": {`)

	// String sources are written back as line lists.
	var raw struct {
		Cells []struct {
			Source []string `json:"source"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, []string{"# Lesson\n", "Read the <b>data</b>."}, raw.Cells[1].Source)

	first, err := os.ReadFile(filepath.Join(out, "lesson.ipynb"))
	require.NoError(t, err)
	_, err = NewTransformer(newTestConfig()).Process(nbPath, out)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(out, "lesson.ipynb"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestProcess_NoWorkshopMetadataIsSkipped(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	for name, metadata := range map[string]string{
		"absent": `{}`,
		"empty":  `{"workshop": {}}`,
		"null":   `{"workshop": null}`,
		"scalar": `{"workshop": "yes"}`,
	} {
		nbPath := filepath.Join(src, name+".ipynb")
		writeFile(t, nbPath, `{"cells": [], "metadata": `+metadata+`, "nbformat": 4, "nbformat_minor": 2}`)

		item, err := NewTransformer(newTestConfig()).Process(nbPath, out)
		require.NoError(t, err, name)
		require.Nil(t, item, name)
	}

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProcess_MalformedJSONIsFatal(t *testing.T) {
	nbPath := filepath.Join(t.TempDir(), "broken.ipynb")
	writeFile(t, nbPath, `{"cells": [`)

	_, err := NewTransformer(newTestConfig()).Process(nbPath, t.TempDir())
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryNotebook, ce.Category())
	require.True(t, ce.IsFatal())
}

func TestProcess_WithoutDataFiles(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	nbPath := filepath.Join(src, "extras", "notes.ipynb")
	writeFile(t, nbPath, `{
 "cells": [{"cell_type": "code", "metadata": {"tags": ["solution"]}, "source": "print(1)", "execution_count": 3, "outputs": []}],
 "metadata": {"workshop": {"description": "Just notes"}},
 "nbformat": 4, "nbformat_minor": 2
}`)

	item, err := NewTransformer(newTestConfig()).Process(nbPath, out)
	require.NoError(t, err)
	require.Equal(t, "notes", item.Title)
	require.Nil(t, item.Order)
	require.False(t, item.HasData())
	require.Equal(t, "extras", item.Section)

	exercise := readNotebook(t, filepath.Join(out, "notes.ipynb"))
	require.Len(t, exercise.Cells, 1)
	require.Empty(t, exercise.Cells[0].ID)
	require.Empty(t, exercise.Cells[0].Source)

	_, err = os.Stat(filepath.Join(out, "notes-data.zip"))
	require.True(t, os.IsNotExist(err))
}

func TestProcess_SetupCellAtTopWithoutMarkdown(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	nbPath := filepath.Join(src, "code-only.ipynb")
	writeFile(t, nbPath, `{
 "cells": [{"cell_type": "code", "metadata": {}, "source": [], "execution_count": null, "outputs": []}],
 "metadata": {"workshop": {"data_files": "missing/*.csv", "install": ["requests", "lxml"]}},
 "nbformat": 4, "nbformat_minor": 4
}`)

	item, err := NewTransformer(newTestConfig()).Process(nbPath, out)
	require.NoError(t, err)
	require.True(t, item.HasData())
	require.Empty(t, item.DataEntries)

	nb := readNotebook(t, filepath.Join(out, "code-only.ipynb"))
	require.Len(t, nb.Cells, 2)
	require.Empty(t, nb.Cells[0].ID, "ids are only assigned for nbformat 4.5+")
	require.Contains(t, nb.Cells[0].Source.Text(), "!pip install -q requests lxml\n")
	require.NotContains(t, nb.Cells[0].Source.Text(), "Useful links")
}
