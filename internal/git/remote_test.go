package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubURL(t *testing.T) {
	cases := map[string]string{
		"https://github.com/org/workshop.git":   "org/workshop",
		"https://github.com/org/workshop":       "org/workshop",
		"git@github.com:org/workshop.git":       "org/workshop",
		"ssh://git@github.com/org/workshop.git": "org/workshop",
		"https://user@github.com/org/workshop/": "org/workshop",
	}
	for in, want := range cases {
		got, err := ParseGitHubURL(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}

func TestParseGitHubURL_RejectsOtherHosts(t *testing.T) {
	for _, in := range []string{
		"https://gitlab.com/org/workshop.git",
		"/srv/git/workshop.git",
		"https://github.com/org",
	} {
		_, err := ParseGitHubURL(in)
		require.ErrorIs(t, err, ErrNoGitHubRemote, in)
	}
}

func TestDetectGitHubRemote(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: DefaultRemoteName,
		URLs: []string{"git@github.com:birn/workshop.git"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("course"))))

	sub := filepath.Join(dir, "notebooks")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	remote, err := DetectGitHubRemote(sub)
	require.NoError(t, err)
	require.Equal(t, "birn/workshop", remote.Repo)
	require.Equal(t, "course", remote.Branch)
	require.Equal(t, "git@github.com:birn/workshop.git", remote.URL)
}

func TestDetectGitHubRemote_NoOrigin(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

	remote, err := DetectGitHubRemote(dir)
	require.NoError(t, err)
	require.Empty(t, remote.Repo)
	require.Empty(t, remote.URL)
	require.Equal(t, "main", remote.Branch)
}

func TestDetectGitHubRemote_NotARepository(t *testing.T) {
	_, err := DetectGitHubRemote(t.TempDir())
	require.Error(t, err)
}
