// Package notebook turns annotated Jupyter notebooks into exercise and
// answer variants ready for publication.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SolutionTag marks a cell whose content is removed from the exercise variant.
const SolutionTag = "solution"

// Cell types used by the transformer.
const (
	CellCode     = "code"
	CellMarkdown = "markdown"
)

// Notebook is a parsed nbformat document. Keys the transformer does not
// interpret are kept verbatim in Extra and written back unchanged.
type Notebook struct {
	Cells         []Cell
	Metadata      map[string]json.RawMessage
	NBFormat      int
	NBFormatMinor int
	Extra         map[string]json.RawMessage
}

// Cell is a single notebook cell.
type Cell struct {
	ID             string
	CellType       string
	Metadata       map[string]json.RawMessage
	Source         Source
	ExecutionCount *int
	Outputs        []json.RawMessage
	Extra          map[string]json.RawMessage
}

// Source is cell text as a list of lines, each but the last ending in "\n".
// It decodes from either a single string or a list of strings.
type Source []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Source) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = SplitLines(text)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("cell source must be a string or a list of strings: %w", err)
	}
	*s = lines
	return nil
}

// MarshalJSON always writes the list form.
func (s Source) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return marshal([]string(s))
}

// Text joins the source lines.
func (s Source) Text() string {
	return strings.Join(s, "")
}

// SplitLines splits text into nbformat source lines, keeping line terminators.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

var errNotObject = errors.New("expected a JSON object")

// Parse decodes a notebook document.
func Parse(data []byte) (*Notebook, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errNotObject
	}

	nb := &Notebook{Extra: make(map[string]json.RawMessage)}
	for key, value := range raw {
		var err error
		switch key {
		case "cells":
			var cells []json.RawMessage
			if err = json.Unmarshal(value, &cells); err == nil {
				nb.Cells = make([]Cell, 0, len(cells))
				for i, rc := range cells {
					cell, cellErr := parseCell(rc)
					if cellErr != nil {
						return nil, fmt.Errorf("cell %d: %w", i, cellErr)
					}
					nb.Cells = append(nb.Cells, cell)
				}
			}
		case "metadata":
			err = json.Unmarshal(value, &nb.Metadata)
		case "nbformat":
			err = json.Unmarshal(value, &nb.NBFormat)
		case "nbformat_minor":
			err = json.Unmarshal(value, &nb.NBFormatMinor)
		default:
			nb.Extra[key] = value
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nb, nil
}

func parseCell(data []byte) (Cell, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Cell{}, err
	}
	if raw == nil {
		return Cell{}, errNotObject
	}

	cell := Cell{Extra: make(map[string]json.RawMessage)}
	for key, value := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(value, &cell.ID)
		case "cell_type":
			err = json.Unmarshal(value, &cell.CellType)
		case "metadata":
			err = json.Unmarshal(value, &cell.Metadata)
		case "source":
			err = json.Unmarshal(value, &cell.Source)
		case "execution_count":
			err = json.Unmarshal(value, &cell.ExecutionCount)
		case "outputs":
			err = json.Unmarshal(value, &cell.Outputs)
		default:
			cell.Extra[key] = value
		}
		if err != nil {
			return Cell{}, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return cell, nil
}

// MarshalJSON implements json.Marshaler.
func (nb *Notebook) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(nb.Extra)+4)
	for k, v := range nb.Extra {
		out[k] = v
	}
	cells := nb.Cells
	if cells == nil {
		cells = []Cell{}
	}
	out["cells"] = cells
	out["metadata"] = nonNil(nb.Metadata)
	out["nbformat"] = nb.NBFormat
	out["nbformat_minor"] = nb.NBFormatMinor
	return marshal(out)
}

// MarshalJSON implements json.Marshaler. Code cells always carry
// execution_count and outputs.
func (c Cell) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+6)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.ID != "" {
		out["id"] = c.ID
	}
	out["cell_type"] = c.CellType
	out["metadata"] = nonNil(c.Metadata)
	out["source"] = c.Source
	if c.CellType == CellCode {
		out["execution_count"] = c.ExecutionCount
		outputs := c.Outputs
		if outputs == nil {
			outputs = []json.RawMessage{}
		}
		out["outputs"] = outputs
	}
	return marshal(out)
}

// Tags returns the cell's metadata tags. Malformed tag lists yield nil.
func (c Cell) Tags() []string {
	raw, ok := c.Metadata["tags"]
	if !ok {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

// HasTag reports whether the cell carries tag.
func (c Cell) HasTag(tag string) bool {
	for _, t := range c.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that can be mutated without affecting nb. Raw JSON
// values are shared because they are never modified in place.
func (nb *Notebook) Clone() *Notebook {
	cp := &Notebook{
		Cells:         make([]Cell, len(nb.Cells)),
		Metadata:      cloneRaw(nb.Metadata),
		NBFormat:      nb.NBFormat,
		NBFormatMinor: nb.NBFormatMinor,
		Extra:         cloneRaw(nb.Extra),
	}
	for i, c := range nb.Cells {
		cp.Cells[i] = c.Clone()
	}
	return cp
}

// Clone returns a deep copy of the cell.
func (c Cell) Clone() Cell {
	cp := c
	cp.Metadata = cloneRaw(c.Metadata)
	cp.Extra = cloneRaw(c.Extra)
	if c.Source != nil {
		cp.Source = append(Source{}, c.Source...)
	}
	if c.Outputs != nil {
		cp.Outputs = append([]json.RawMessage{}, c.Outputs...)
	}
	if c.ExecutionCount != nil {
		n := *c.ExecutionCount
		cp.ExecutionCount = &n
	}
	return cp
}

// SupportsCellIDs reports whether the nbformat version requires cell ids (4.5+).
func (nb *Notebook) SupportsCellIDs() bool {
	return nb.NBFormat > 4 || (nb.NBFormat == 4 && nb.NBFormatMinor >= 5)
}

// FirstMarkdownIndex returns the index of the first markdown cell, or -1.
func (nb *Notebook) FirstMarkdownIndex() int {
	for i, c := range nb.Cells {
		if c.CellType == CellMarkdown {
			return i
		}
	}
	return -1
}

// InsertCell inserts cell at position pos, clamped to the valid range.
func (nb *Notebook) InsertCell(pos int, cell Cell) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(nb.Cells) {
		pos = len(nb.Cells)
	}
	nb.Cells = append(nb.Cells, Cell{})
	copy(nb.Cells[pos+1:], nb.Cells[pos:])
	nb.Cells[pos] = cell
}

// EmptyCodeCell returns a blank code cell. id is kept so nbformat 4.5
// documents stay valid.
func EmptyCodeCell(id string) Cell {
	return Cell{
		ID:       id,
		CellType: CellCode,
		Metadata: map[string]json.RawMessage{},
		Source:   Source{},
		Outputs:  []json.RawMessage{},
	}
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	cp := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func nonNil(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return map[string]json.RawMessage{}
	}
	return m
}

// marshal encodes v without escaping HTML characters.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
