// Package index builds the landing page listing every published item.
package index

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/nbpublish/internal/config"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
	"git.home.luguber.info/inful/nbpublish/internal/render"
)

// FileName is the name of the generated landing page.
const FileName = "index.html"

// Template placeholders, replaced in this order.
const (
	TokenTitle        = "{{ title }}"
	TokenDescription  = "{{ description }}"
	TokenNotebooks    = "{{ notebooks }}"
	TokenAuthor       = "{{ author }}"
	TokenOrganization = "{{ organization }}"
)

// Builder renders the index page for a configuration.
type Builder struct {
	cfg      *config.Config
	renderer *render.Renderer
}

// NewBuilder creates a Builder.
func NewBuilder(cfg *config.Config, r *render.Renderer) *Builder {
	return &Builder{cfg: cfg, renderer: r}
}

// Build writes index.html for items into outputDir and returns its path.
func (b *Builder) Build(items []*publish.Item, outputDir string) (string, error) {
	page, err := b.renderer.Page(b.Markdown(items), b.cfg.Title)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, FileName)
	// #nosec G306 -- published pages are world readable
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "write index").
			Fatal().WithContext("path", path).Build()
	}
	slog.Info("Created index", logfields.Output(path), logfields.Count(len(items)))
	return path, nil
}

// Markdown fills the configured template. Substitution is literal and
// placeholders the template does not know are left untouched.
func (b *Builder) Markdown(items []*publish.Item) string {
	tmpl := b.cfg.IndexTemplate
	if tmpl == "" {
		tmpl = config.DefaultIndexTemplate
	}
	replacements := []struct{ token, value string }{
		{TokenTitle, b.cfg.Title},
		{TokenDescription, b.cfg.Description},
		{TokenNotebooks, b.Listing(items)},
		{TokenAuthor, b.cfg.Author},
		{TokenOrganization, b.cfg.Organization},
	}
	out := tmpl
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r.token, r.value)
	}
	return out
}

// Listing renders the per-section item listing that replaces {{ notebooks }}.
func (b *Builder) Listing(items []*publish.Item) string {
	var sb strings.Builder
	for _, group := range publish.GroupBySection(items) {
		fmt.Fprintf(&sb, "\n## %s\n\n", group.Label)
		for _, item := range group.Items {
			b.writeItem(&sb, item)
		}
	}
	return sb.String()
}

// ViewerURL is the notebook viewer address of a published notebook file.
// The viewer path and file name are percent-escaped per segment.
func (b *Builder) ViewerURL(file string) string {
	parts := []string{b.cfg.ViewerURL, b.cfg.GitHubRepo, "blob", b.cfg.GitHubBranch}
	if b.cfg.ViewerPath != "" {
		parts = append(parts, escapePath(b.cfg.ViewerPath))
	}
	return strings.Join(append(parts, escapePath(file)), "/")
}

// localHref is the relative link to a file in the output directory.
func localHref(file string) string {
	return "./" + escapePath(file)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (b *Builder) writeItem(sb *strings.Builder, item *publish.Item) {
	target := localHref(item.HTMLFile)
	if item.Kind == publish.KindNotebook {
		target = b.ViewerURL(item.ExerciseFile)
	}
	fmt.Fprintf(sb, "### [%s](%s)\n\n", item.Title, target)
	if item.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", item.Description)
	}

	switch item.Kind {
	case publish.KindNotebook:
		sb.WriteString("<div class=\"resource-buttons\">\n")
		fmt.Fprintf(sb, "<a href=\"%s\" class=\"resource-button primary\">🚀 Live coding worksheet</a>\n", attr(b.ViewerURL(item.ExerciseFile)))
		fmt.Fprintf(sb, "<a href=\"%s\" class=\"resource-button completed\">✓ Completed version</a>\n", attr(b.ViewerURL(item.AnswersFile)))
		sb.WriteString("</div>\n")
		sb.WriteString("<div class=\"download-links\">\n")
		fmt.Fprintf(sb, "📓 Download: <a href=\"%s\">worksheet</a> | <a href=\"%s\">completed</a><br>\n", attr(localHref(item.ExerciseFile)), attr(localHref(item.AnswersFile)))
		if item.HasData() {
			fmt.Fprintf(sb, "📦 Data: <a href=\"%s\">%s</a>\n", attr(localHref(item.DataFile)), html.EscapeString(item.DataFile))
		}
		sb.WriteString("</div>\n\n")
	default:
		if item.HasData() {
			fmt.Fprintf(sb, "<div>\n📦 Data: <a href=\"%s\">%s</a><br>\n</div>\n\n", attr(localHref(item.DataFile)), html.EscapeString(item.DataFile))
		}
	}

	if len(item.Links) > 0 {
		sb.WriteString("**Links:**\n\n<ul>")
		for _, link := range item.Links {
			fmt.Fprintf(sb, "<li><a href=\"%s\">%s</a>", attr(link.Target()), html.EscapeString(link.DisplayName()))
			if link.Description != "" {
				fmt.Fprintf(sb, " %s", html.EscapeString(link.Description))
			}
			sb.WriteString("</li>\n")
		}
		sb.WriteString("</ul>\n\n")
	}
}

func attr(s string) string {
	return html.EscapeString(s)
}
