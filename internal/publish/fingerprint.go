package publish

import (
	"errors"
	"strings"

	"git.home.luguber.info/inful/nbpublish/internal/frontmatter"
	"github.com/inful/mdfp"
)

// Fingerprint computes the canonical content fingerprint of a source document.
//
// fields is the metadata block (frontmatter or notebook workshop block) and
// body the document text. Metadata is serialized with sorted keys and LF
// newlines, and a single trailing newline is trimmed before hashing, so the
// result only changes when content does.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	fieldsForHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		fieldsForHash[k] = v
	}

	metadata := ""
	if len(fieldsForHash) > 0 {
		serialized, err := frontmatter.SerializeYAML(fieldsForHash, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		metadata = trimSingleTrailingNewline(string(serialized))
	}

	return mdfp.CalculateFingerprintFromParts(metadata, string(body)), nil
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
