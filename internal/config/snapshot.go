package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Snapshot computes a stable hash of every field that affects published output.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	w("github_repo", c.GitHubRepo)
	w("github_branch", c.GitHubBranch)
	w("title", c.Title)
	w("description", c.Description)
	w("output_dir", c.OutputDir)
	for _, s := range c.Sections {
		w("section", s.Folder, s.Title)
	}
	w("index_template", c.IndexTemplate)
	w("author", c.Author)
	w("organization", c.Organization)
	w("viewer_url", c.ViewerURL)
	w("viewer_path", c.ViewerPath)
	w("default_install", c.DefaultInstall)
	return hex.EncodeToString(h.Sum(nil))
}
