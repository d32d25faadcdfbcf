package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the publication configuration, loaded once per run and passed
// explicitly to every component.
type Config struct {
	GitHubRepo     string    `yaml:"github_repo"`
	GitHubBranch   string    `yaml:"github_branch"`
	Title          string    `yaml:"title"`
	Description    string    `yaml:"description,omitempty"`
	OutputDir      string    `yaml:"output_dir"`
	Sections       []Section `yaml:"sections"`
	IndexTemplate  string    `yaml:"index_template,omitempty"`
	Author         string    `yaml:"author,omitempty"`
	Organization   string    `yaml:"organization,omitempty"`
	ViewerURL      string    `yaml:"viewer_url,omitempty"`      // Notebook viewer base, e.g. Colab's GitHub loader
	ViewerPath     string    `yaml:"viewer_path,omitempty"`     // Repository path of published notebooks
	DefaultInstall string    `yaml:"default_install,omitempty"` // Packages installed by setup cells
}

// Section maps a source folder to the heading it is listed under in the index.
type Section struct {
	Folder string `yaml:"folder"`
	Title  string `yaml:"title,omitempty"`
}

// UnmarshalYAML accepts either a bare folder string or a {folder, title} mapping.
// A missing title defaults to the folder.
func (s *Section) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var folder string
		if err := node.Decode(&folder); err != nil {
			return err
		}
		*s = Section{Folder: folder, Title: folder}
		return nil
	case yaml.MappingNode:
		type plain Section
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		if p.Title == "" {
			p.Title = p.Folder
		}
		*s = Section(p)
		return nil
	default:
		return fmt.Errorf("line %d: section must be a folder name or a {folder, title} mapping", node.Line)
	}
}
