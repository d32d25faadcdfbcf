// Package linkcheck verifies that relative links in generated pages resolve
// to files in the output directory.
package linkcheck

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

// Link is a reference found in an HTML page.
type Link struct {
	URL       string // Attribute value as written
	Text      string // Anchor text, empty for non-anchor elements
	Tag       string // Element name
	Attribute string // href or src
}

// Broken is a relative link whose target does not exist.
type Broken struct {
	Page string
	Link *Link
}

var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
}

// ExtractLinks returns every href/src reference in an HTML document, in
// document order.
func ExtractLinks(r io.Reader) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []*Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					l := &Link{URL: v, Tag: n.Data, Attribute: attr}
					if n.Data == "a" {
						l.Text = strings.TrimSpace(extractText(n))
					}
					links = append(links, l)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// CheckPages checks every page (paths relative to dir) and logs a warning for
// each relative link whose target is missing.
func CheckPages(dir string, pages ...string) ([]Broken, error) {
	var broken []Broken
	for _, page := range pages {
		found, err := CheckPage(filepath.Join(dir, page))
		if err != nil {
			return broken, err
		}
		for _, b := range found {
			slog.Warn("Broken relative link", logfields.Path(page), slog.String("href", b.Link.URL))
		}
		broken = append(broken, found...)
	}
	return broken, nil
}

// CheckPage returns the relative links of the page at path that do not
// resolve to an existing file. External and fragment-only links are ignored.
func CheckPage(path string) ([]Broken, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open page for link check").
			WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractLinks(f)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "parse page for link check").
			WithContext("path", path).Build()
	}

	base := filepath.Dir(path)
	var broken []Broken
	for _, l := range links {
		target, ok := LocalTarget(l.URL)
		if !ok {
			continue
		}
		full := filepath.Join(base, filepath.FromSlash(target))
		if strings.HasSuffix(target, "/") || target == "." {
			full = filepath.Join(full, "index.html")
		}
		if _, err := os.Stat(full); errors.Is(err, os.ErrNotExist) {
			broken = append(broken, Broken{Page: path, Link: l})
		}
	}
	return broken, nil
}

// LocalTarget returns the decoded path of a relative link. ok is false for
// absolute URLs, scheme links and fragment-only links.
func LocalTarget(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "", false
	}
	if u.Path == "" || strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	return u.Path, true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}
