package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoGitHubRemote is returned when the origin remote does not point at GitHub.
var ErrNoGitHubRemote = errors.New("origin remote is not a GitHub repository")

// DefaultRemoteName is the remote consulted for the repository slug.
const DefaultRemoteName = "origin"

// Remote describes what could be detected about the enclosing repository.
type Remote struct {
	URL    string // Raw origin URL, empty without an origin remote
	Repo   string // owner/name slug, empty when origin is not on GitHub
	Branch string // Checked out branch, empty on a detached HEAD
}

// DetectGitHubRemote opens the repository containing dir and reports its
// GitHub slug and current branch.
//
// An error is returned only when dir is not inside a repository. Missing or
// non-GitHub remotes leave Repo empty.
func DetectGitHubRemote(dir string) (*Remote, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}

	out := &Remote{Branch: currentBranch(repo)}

	remote, err := repo.Remote(DefaultRemoteName)
	if err != nil {
		return out, nil
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		out.URL = urls[0]
		if slug, slugErr := ParseGitHubURL(out.URL); slugErr == nil {
			out.Repo = slug
		}
	}
	return out, nil
}

func currentBranch(repo *git.Repository) string {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return ""
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short()
	}
	return ""
}

// ParseGitHubURL extracts "owner/name" from an https, ssh or scp-style
// GitHub remote URL.
func ParseGitHubURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var path string
	switch {
	case strings.HasPrefix(raw, "git@github.com:"):
		path = strings.TrimPrefix(raw, "git@github.com:")
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse remote url: %w", err)
		}
		if !strings.EqualFold(u.Hostname(), "github.com") {
			return "", ErrNoGitHubRemote
		}
		path = u.Path
	default:
		return "", ErrNoGitHubRemote
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrNoGitHubRemote, raw)
	}
	return parts[0] + "/" + parts[1], nil
}
