package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/nbpublish/internal/publish"
)

// WorkshopKey is the notebook metadata key holding publication settings.
const WorkshopKey = "workshop"

// ErrInvalidWorkshop is returned when the workshop block is not a JSON object.
var ErrInvalidWorkshop = errors.New("workshop metadata must be an object")

// Workshop is the publication block embedded in notebook metadata.
type Workshop struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DataFiles   StringList     `json:"data_files"`
	Install     StringList     `json:"install"`
	Order       *float64       `json:"order"`
	Links       []publish.Link `json:"links"`

	// Fields is the block as a generic mapping, used for fingerprinting.
	Fields map[string]any `json:"-"`
}

// StringList decodes from a single string or a list of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
		} else {
			*l = StringList{s}
		}
	default:
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("expected a string or a list of strings: %w", err)
		}
		*l = list
	}
	return nil
}

// Join returns the entries separated by single spaces.
func (l StringList) Join() string {
	return strings.Join(l, " ")
}

// Workshop decodes the workshop metadata block. It returns nil without error
// when the block is absent, null or an empty object.
func (nb *Notebook) Workshop() (*Workshop, error) {
	raw, ok := nb.Metadata[WorkshopKey]
	if !ok {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkshop, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var ws Workshop
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("decode workshop metadata: %w", err)
	}
	ws.Fields = fields
	return &ws, nil
}
