// Package render converts markdown into standalone, styled HTML pages.
package render

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

// HighlightStyle is the chroma style used for fenced code blocks.
const HighlightStyle = "friendly"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{ .Title }}</title>
    <style>{{ .CSS }}</style>
</head>
<body>
{{ .Body }}
</body>
</html>
`))

// Renderer turns markdown into complete HTML documents. The zero value has no
// converter and falls back to preformatted output.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer backed by goldmark with GitHub flavoured extensions,
// footnotes, definition lists and inline-styled code highlighting. Raw HTML in
// the markdown is passed through.
func New() *Renderer {
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(highlighting.WithStyle(HighlightStyle)),
		),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// Body converts markdown to an HTML fragment. Without a converter, or when
// conversion fails, the text is wrapped verbatim in a <pre> block.
func (r *Renderer) Body(markdown string) string {
	if r == nil || r.md == nil {
		return preformatted(markdown)
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		slog.Warn("Markdown conversion failed, using preformatted text", logfields.Error(err))
		return preformatted(markdown)
	}
	return buf.String()
}

// Page renders markdown into a full HTML document titled title.
func (r *Renderer) Page(markdown, title string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: title,
		CSS:   template.CSS(Stylesheet),
		Body:  template.HTML(r.Body(markdown)), // #nosec G203 -- markdown sources are trusted workshop content
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "render page").
			Fatal().WithContext("title", title).Build()
	}
	return buf.Bytes(), nil
}

func preformatted(text string) string {
	return "<pre>" + text + "</pre>"
}
