// Package markdown publishes markdown documents that carry workshop frontmatter
// as standalone HTML pages.
package markdown

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/nbpublish/internal/archive"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/frontmatter"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
	"git.home.luguber.info/inful/nbpublish/internal/render"
)

// DataSuffix names the data archive built for a document.
const DataSuffix = "-data.zip"

// Frontmatter is the publication block at the top of a document.
type Frontmatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	DataFiles   StringList     `yaml:"data_files"`
	Order       *float64       `yaml:"order"`
	Links       []publish.Link `yaml:"links"`
}

// Transformer renders documents into the output directory.
type Transformer struct {
	renderer *render.Renderer
}

// NewTransformer creates a Transformer that renders pages with r.
func NewTransformer(r *render.Renderer) *Transformer {
	return &Transformer{renderer: r}
}

// Process publishes the document at path into outputDir.
//
// Documents without frontmatter, with an empty block or with a block that
// cannot be parsed are skipped and Process returns nil.
func (t *Transformer) Process(path, outputDir string) (*publish.Item, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path discovered in a configured section folder
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read markdown document").
			Fatal().WithContext("path", path).Build()
	}

	doc, err := frontmatter.Split(content)
	if err != nil {
		slog.Warn("Skipping document with unterminated frontmatter", logfields.Path(path), logfields.Error(err))
		return nil, nil
	}
	if !doc.Had {
		slog.Info("Skipping document without frontmatter", logfields.Path(path))
		return nil, nil
	}

	fields, err := frontmatter.ParseYAML(doc.Frontmatter)
	if err != nil {
		slog.Warn("Skipping document with invalid frontmatter", logfields.Path(path), logfields.Error(err))
		return nil, nil
	}
	if len(fields) == 0 {
		slog.Info("Skipping document with empty frontmatter", logfields.Path(path))
		return nil, nil
	}
	var fm Frontmatter
	if err := frontmatter.Decode(doc.Frontmatter, &fm); err != nil {
		slog.Warn("Skipping document with invalid frontmatter", logfields.Path(path), logfields.Error(err))
		return nil, nil
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	docDir := filepath.Dir(path)
	title := fm.Title
	if title == "" {
		title = baseName
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			Fatal().WithContext("path", outputDir).Build()
	}

	item := &publish.Item{
		Name:          baseName,
		Title:         title,
		Description:   fm.Description,
		Kind:          publish.KindMarkdown,
		HTMLFile:      baseName + ".html",
		Section:       filepath.Base(docDir),
		SectionFolder: docDir,
		Order:         fm.Order,
		Links:         fm.Links,
	}

	if len(fm.DataFiles) > 0 {
		zipName := baseName + DataSuffix
		res, err := archive.Build(fm.DataFiles, filepath.Join(outputDir, zipName), docDir)
		if err != nil {
			return nil, err
		}
		item.DataFile = zipName
		item.DataEntries = res.Entries
	}

	page, err := t.renderer.Page(Compose(title, item.DataFile, fm.Links, string(doc.Body)), title)
	if err != nil {
		return nil, err
	}
	outPath := filepath.Join(outputDir, item.HTMLFile)
	// #nosec G306 -- published pages are world readable
	if err := os.WriteFile(outPath, page, 0o644); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write page").
			Fatal().WithContext("path", outPath).Build()
	}
	slog.Info("Created page", logfields.Output(outPath))

	fp, err := publish.Fingerprint(fields, doc.Body)
	if err != nil {
		slog.Debug("Fingerprint unavailable", logfields.Path(path), logfields.Error(err))
	}
	item.Fingerprint = fp
	return item, nil
}

// Compose assembles the published markdown: the title heading, a download box
// when dataFile is set, a links section when links are given, then body.
func Compose(title, dataFile string, links []publish.Link, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if dataFile != "" {
		fmt.Fprintf(&b, "<div class=\"download-box\">\n<strong>Download files:</strong> <a href=\"./%s\">📦 %s</a>\n</div>\n\n",
			html.EscapeString(url.PathEscape(dataFile)), html.EscapeString(dataFile))
	}
	if len(links) > 0 {
		b.WriteString("## Useful Links\n\n")
		for _, link := range links {
			fmt.Fprintf(&b, "- [%s](%s)", link.DisplayName(), link.Target())
			if link.Description != "" {
				fmt.Fprintf(&b, " - %s", link.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(body)
	return b.String()
}

// StringList decodes from a single string or a list of strings.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*l = nil
		if single != "" {
			*l = StringList{single}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("line %d: data_files must be a pattern or a list of patterns", node.Line)
	}
}
