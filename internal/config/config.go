package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/git"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "workshop-config.yaml"

// Load reads the configuration at configPath.
//
// A missing file is not an error: the built-in defaults are returned and a
// warning is logged. Environment files next to the configuration are loaded
// first and $VAR references in github_repo, github_branch and output_dir are
// expanded; all other values are taken verbatim. Fields left empty are
// filled from the enclosing git repository where possible, then from defaults.
func Load(configPath string) (*Config, error) {
	dir := filepath.Dir(configPath)
	if err := loadEnvFile(dir); err != nil {
		slog.Debug("No .env file loaded", logfields.Path(dir), logfields.Error(err))
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- user supplied configuration path
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Configuration file not found, using defaults", logfields.Path(configPath))
		cfg := &Config{}
		applyDefaults(cfg, detectRepo(dir))
		return cfg, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration file").
			Fatal().WithContext("path", configPath).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration file").
			Fatal().WithContext("path", configPath).Build()
	}
	cfg.expandEnv()
	applyDefaults(cfg, detectRepo(dir))
	return cfg, nil
}

// Parse decodes configuration YAML without applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func detectRepo(dir string) RepoInfo {
	remote, err := git.DetectGitHubRemote(dir)
	if err != nil {
		slog.Debug("Repository detection skipped", logfields.Path(dir), logfields.Error(err))
		return RepoInfo{}
	}
	return RepoInfo{GitHubRepo: remote.Repo, Branch: remote.Branch}
}
