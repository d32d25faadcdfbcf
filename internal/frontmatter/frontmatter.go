// Package frontmatter splits YAML frontmatter from markdown documents.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Style captures the newline convention of a document.
type Style struct {
	Newline string
}

// Document is a markdown file split into its raw frontmatter and body.
type Document struct {
	Frontmatter []byte // YAML without the --- delimiters
	Body        []byte
	Had         bool // true when a frontmatter block was present
	Style       Style
}

// Split separates YAML frontmatter from the markdown body.
//
// Frontmatter is recognized only when the first line is exactly "---" and a
// later line is exactly "---" (end of input also terminates that line). When the
// first line is not a delimiter, Had is false and Body is the full input.
func Split(content []byte) (Document, error) {
	style := detectStyle(content)
	nl := []byte(style.Newline)
	delim := []byte("---")

	open := append(append([]byte{}, delim...), nl...)
	if !bytes.HasPrefix(content, open) {
		return Document{Body: content, Style: style}, nil
	}

	rest := content[len(open):]
	offset := 0
	for offset <= len(rest) {
		lineEnd := bytes.Index(rest[offset:], nl)
		var line []byte
		next := len(rest) + 1
		if lineEnd < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
			next = offset + lineEnd + len(nl)
		}
		if bytes.Equal(line, delim) {
			doc := Document{Frontmatter: rest[:offset], Had: true, Style: style}
			if next <= len(rest) {
				doc.Body = rest[next:]
			} else {
				doc.Body = []byte{}
			}
			return doc, nil
		}
		if lineEnd < 0 {
			break
		}
		offset = next
	}
	return Document{Style: style}, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Decode unmarshals raw YAML frontmatter into out.
func Decode(frontmatter []byte, out any) error {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return nil
	}
	return yaml.Unmarshal(frontmatter, out)
}

func detectStyle(content []byte) Style {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}
