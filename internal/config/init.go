package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
)

// Init writes an example configuration file to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	detected := detectRepo(filepath.Dir(configPath))
	example := Config{
		GitHubRepo:   firstNonEmpty(detected.GitHubRepo, DefaultGitHubRepo),
		GitHubBranch: firstNonEmpty(detected.Branch, DefaultGitHubBranch),
		Title:        "Data Journalism Workshop",
		Description:  "Notebooks and handouts for the workshop.",
		OutputDir:    DefaultOutputDir,
		Sections: []Section{
			{Folder: "01-basics", Title: "Getting started"},
			{Folder: "02-scraping", Title: "Scraping"},
		},
		IndexTemplate: DefaultIndexTemplate + "\n---\n\nPrepared by {{ author }}, {{ organization }}.\n",
		Author:        "Your Name",
		Organization:  "Your Organization",
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 -- configuration is not secret
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}
