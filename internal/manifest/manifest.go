// Package manifest records what a publication run consumed and produced.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/nbpublish/internal/config"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
)

// BuildManifest is a complete record of a run's inputs and outputs.
type BuildManifest struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version,omitempty"`
	Inputs    Inputs       `json:"inputs"`
	Items     []ItemRecord `json:"items"`
	Outputs   Outputs      `json:"outputs"`
	Status    string       `json:"status"`
	Duration  int64        `json:"duration_ms"`
}

// Inputs captures the configuration of the run.
type Inputs struct {
	ConfigHash   string   `json:"config_hash"`
	GitHubRepo   string   `json:"github_repo"`
	GitHubBranch string   `json:"github_branch"`
	Sections     []string `json:"sections"`
}

// ItemRecord describes one published item.
type ItemRecord struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Kind        string   `json:"kind"`
	Section     string   `json:"section"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Files       []string `json:"files"`
	DataEntries []string `json:"data_entries,omitempty"`
}

// Outputs captures hashes of everything written to the output directory.
type Outputs struct {
	ContentHash    string            `json:"content_hash,omitempty"`
	ArtifactHashes map[string]string `json:"artifact_hashes,omitempty"`
}

// New starts a manifest for cfg and the items of a run.
func New(cfg *config.Config, items []*publish.Item) *BuildManifest {
	m := &BuildManifest{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Inputs: Inputs{
			ConfigHash:   cfg.Snapshot(),
			GitHubRepo:   cfg.GitHubRepo,
			GitHubBranch: cfg.GitHubBranch,
		},
		Items: make([]ItemRecord, 0, len(items)),
	}
	for _, s := range cfg.Sections {
		m.Inputs.Sections = append(m.Inputs.Sections, s.Folder)
	}
	for _, it := range items {
		m.Items = append(m.Items, ItemRecord{
			Name:        it.Name,
			Title:       it.Title,
			Kind:        string(it.Kind),
			Section:     it.Section,
			Fingerprint: it.Fingerprint,
			Files:       it.OutputFiles(),
			DataEntries: it.DataEntries,
		})
	}
	return m
}

// HashArtifacts records the sha256 of every regular file under dir, keyed by
// slash-separated path relative to dir, and a combined content hash.
func (m *BuildManifest) HashArtifacts(dir string) error {
	hashes := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sum, err := fileSHA256(path)
		if err != nil {
			return err
		}
		hashes[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return fmt.Errorf("hash artifacts: %w", err)
	}

	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)
	h := sha256.New()
	for _, name := range names {
		_, _ = fmt.Fprintf(h, "%s=%s\n", name, hashes[name])
	}

	m.Outputs.ArtifactHashes = hashes
	m.Outputs.ContentHash = hex.EncodeToString(h.Sum(nil))
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Write stores the manifest as indented JSON at path.
func (m *BuildManifest) Write(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	// #nosec G306 -- manifest is not secret
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Hash computes a deterministic hash of the manifest's inputs and outputs.
// Two runs over identical sources and configuration yield the same hash.
func (m *BuildManifest) Hash() (string, error) {
	hashInput := struct {
		Inputs  Inputs       `json:"inputs"`
		Items   []ItemRecord `json:"items"`
		Content string       `json:"content"`
	}{
		Inputs:  m.Inputs,
		Items:   m.Items,
		Content: m.Outputs.ContentHash,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}
