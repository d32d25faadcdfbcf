package config

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	DefaultGitHubRepo   = "yourusername/birn-workshop"
	DefaultGitHubBranch = "main"
	DefaultTitle        = "Workshop"
	DefaultOutputDir    = "docs"
	DefaultViewerURL    = "https://colab.research.google.com/github"
	DefaultInstall      = "pandas natural_pdf tqdm"
)

// DefaultIndexTemplate is used when the configuration has no index_template.
const DefaultIndexTemplate = `# {{ title }}

{{ description }}

## Materials

{{ notebooks }}
`

// Default returns the configuration used when no configuration file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, RepoInfo{})
	return cfg
}

// RepoInfo carries repository coordinates detected from the working tree.
type RepoInfo struct {
	GitHubRepo string
	Branch     string
}

func applyDefaults(cfg *Config, detected RepoInfo) {
	if cfg.GitHubRepo == "" {
		cfg.GitHubRepo = firstNonEmpty(detected.GitHubRepo, DefaultGitHubRepo)
	}
	if cfg.GitHubBranch == "" {
		cfg.GitHubBranch = firstNonEmpty(detected.Branch, DefaultGitHubBranch)
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.IndexTemplate == "" {
		cfg.IndexTemplate = DefaultIndexTemplate
	}
	if cfg.ViewerURL == "" {
		cfg.ViewerURL = DefaultViewerURL
	}
	cfg.ViewerURL = strings.TrimRight(cfg.ViewerURL, "/")
	if cfg.ViewerPath == "" {
		cfg.ViewerPath = cfg.OutputDir
	}
	cfg.ViewerPath = strings.Trim(path.Clean(filepath.ToSlash(cfg.ViewerPath)), "/")
	if cfg.ViewerPath == "." {
		cfg.ViewerPath = ""
	}
	if cfg.DefaultInstall == "" {
		cfg.DefaultInstall = DefaultInstall
	}
	for i := range cfg.Sections {
		if cfg.Sections[i].Title == "" {
			cfg.Sections[i].Title = cfg.Sections[i].Folder
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
