package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultGitHubRepo, cfg.GitHubRepo)
	require.Equal(t, DefaultGitHubBranch, cfg.GitHubBranch)
	require.Equal(t, DefaultTitle, cfg.Title)
	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
	require.Equal(t, DefaultIndexTemplate, cfg.IndexTemplate)
	require.Equal(t, DefaultViewerURL, cfg.ViewerURL)
	require.Equal(t, "docs", cfg.ViewerPath)
	require.Equal(t, DefaultInstall, cfg.DefaultInstall)
	require.Empty(t, cfg.Sections)
}

func TestLoad_MixedSectionForms(t *testing.T) {
	path := writeConfig(t, `
github_repo: birn/workshop
title: Scraping 101
output_dir: site
sections:
  - intro
  - folder: advanced
    title: Advanced Topics
  - folder: extras
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "birn/workshop", cfg.GitHubRepo)
	require.Equal(t, "Scraping 101", cfg.Title)
	require.Equal(t, "site", cfg.OutputDir)
	require.Equal(t, "site", cfg.ViewerPath)
	require.Equal(t, []Section{
		{Folder: "intro", Title: "intro"},
		{Folder: "advanced", Title: "Advanced Topics"},
		{Folder: "extras", Title: "extras"},
	}, cfg.Sections)
}

func TestLoad_ExpandsEnvironmentInRepositoryAndPaths(t *testing.T) {
	t.Setenv("NBPUBLISH_TEST_OWNER", "birn")
	t.Setenv("NBPUBLISH_TEST_BRANCH", "course")
	path := writeConfig(t, `
github_repo: ${NBPUBLISH_TEST_OWNER}/workshop
github_branch: $NBPUBLISH_TEST_BRANCH
output_dir: site-$NBPUBLISH_TEST_UNDEFINED
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "birn/workshop", cfg.GitHubRepo)
	require.Equal(t, "course", cfg.GitHubBranch)
	require.Equal(t, "site-$NBPUBLISH_TEST_UNDEFINED", cfg.OutputDir)
}

func TestLoad_KeepsDollarSignsInProse(t *testing.T) {
	t.Setenv("USD", "should-not-appear")
	path := writeConfig(t, `
title: "Budgets in $USD"
description: "Track spending over $1 million; cost is $5 per $USD"
author: "${USD}"
index_template: |
  # {{ title }}
  Price: $20
  {{ notebooks }}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Budgets in $USD", cfg.Title)
	require.Equal(t, "Track spending over $1 million; cost is $5 per $USD", cfg.Description)
	require.Equal(t, "${USD}", cfg.Author)
	require.Equal(t, "# {{ title }}\nPrice: $20\n{{ notebooks }}\n", cfg.IndexTemplate)
}

func unsetForTest(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		_ = os.Unsetenv(key)
		envMu.Lock()
		delete(fromEnvFile, key)
		envMu.Unlock()
	})
}

func TestLoad_ReadsDotEnvNextToConfig(t *testing.T) {
	const key = "NBPUBLISH_TEST_ORG"
	unsetForTest(t, key)

	path := writeConfig(t, "github_repo: $"+key+"/workshop\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte(key+"=birn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "birn/workshop", cfg.GitHubRepo)
}

func TestLoad_PicksUpEditedDotEnv(t *testing.T) {
	const key = "NBPUBLISH_TEST_BRANCH_FILE"
	unsetForTest(t, key)

	path := writeConfig(t, "github_branch: $"+key+"\n")
	envPath := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(key+"=first\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "first", cfg.GitHubBranch)

	require.NoError(t, os.WriteFile(envPath, []byte(key+"=second\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "second", cfg.GitHubBranch)
}

func TestLoad_DotEnvDoesNotOverrideProcessEnvironment(t *testing.T) {
	const key = "NBPUBLISH_TEST_PRESET"
	t.Setenv(key, "from-shell")

	path := writeConfig(t, "github_branch: $"+key+"\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte(key+"=from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-shell", cfg.GitHubBranch)
}

func TestLoad_InvalidYAMLIsConfigError(t *testing.T) {
	path := writeConfig(t, "sections: [\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestParse_RejectsSequenceSection(t *testing.T) {
	_, err := Parse([]byte("sections:\n  - [a, b]\n"))
	require.Error(t, err)
}

func TestApplyDefaults_PrefersDetectedRepository(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg, RepoInfo{GitHubRepo: "org/detected", Branch: "course"})
	require.Equal(t, "org/detected", cfg.GitHubRepo)
	require.Equal(t, "course", cfg.GitHubBranch)

	explicit := &Config{GitHubRepo: "org/explicit", GitHubBranch: "gh-pages"}
	applyDefaults(explicit, RepoInfo{GitHubRepo: "org/detected", Branch: "course"})
	require.Equal(t, "org/explicit", explicit.GitHubRepo)
	require.Equal(t, "gh-pages", explicit.GitHubBranch)
}

func TestApplyDefaults_NormalizesViewerSettings(t *testing.T) {
	cfg := &Config{ViewerURL: "https://nbviewer.org/github/", ViewerPath: "./public/notebooks/"}
	applyDefaults(cfg, RepoInfo{})
	require.Equal(t, "https://nbviewer.org/github", cfg.ViewerURL)
	require.Equal(t, "public/notebooks", cfg.ViewerPath)

	root := &Config{OutputDir: "."}
	applyDefaults(root, RepoInfo{})
	require.Empty(t, root.ViewerPath)
}

func TestSnapshot_ChangesWithOutputAffectingFields(t *testing.T) {
	a := Default()
	b := Default()
	require.Equal(t, a.Snapshot(), b.Snapshot())

	b.Sections = append(b.Sections, Section{Folder: "intro", Title: "Intro"})
	require.NotEqual(t, a.Snapshot(), b.Snapshot())
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Data Journalism Workshop", cfg.Title)
	require.Len(t, cfg.Sections, 2)
	require.Contains(t, cfg.IndexTemplate, "{{ notebooks }}")

	err = Init(path, false)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NoError(t, Init(path, true))
}
