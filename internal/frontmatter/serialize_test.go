package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		style  Style
		want   string
	}{
		{
			name:   "empty",
			fields: map[string]any{},
			style:  Style{Newline: "\n"},
			want:   "",
		},
		{
			name:   "keys sorted",
			fields: map[string]any{"title": "Scraping", "order": 2, "description": "Intro"},
			style:  Style{Newline: "\n"},
			want:   "description: Intro\norder: 2\ntitle: Scraping\n",
		},
		{
			name:   "crlf",
			fields: map[string]any{"title": "Scraping"},
			style:  Style{Newline: "\r\n"},
			want:   "title: Scraping\r\n",
		},
		{
			name: "nested workshop block",
			fields: map[string]any{
				"workshop": map[string]any{"title": "PDFs", "install": "natural_pdf"},
			},
			style: Style{Newline: "\n"},
			want:  "workshop:\n  install: natural_pdf\n  title: PDFs\n",
		},
		{
			name: "json decoded values",
			fields: map[string]any{
				"order":      float64(3),
				"data_files": []any{"data/*.csv"},
				"links":      []any{map[string]any{"url": "https://x", "name": "X"}},
			},
			style: Style{Newline: "\n"},
			want:  "data_files:\n  - data/*.csv\nlinks:\n  - name: X\n    url: https://x\norder: 3\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SerializeYAML(tt.fields, tt.style)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))

			again, err := SerializeYAML(tt.fields, tt.style)
			require.NoError(t, err)
			require.Equal(t, string(out), string(again))
		})
	}
}
