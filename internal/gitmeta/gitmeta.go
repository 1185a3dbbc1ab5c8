// Package gitmeta derives repository facts (ref, remote, forge coordinates)
// for source-link generation. A project without a repository is fine; all
// lookups degrade to zero values.
package gitmeta

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Meta describes the repository state a build links against.
type Meta struct {
	Ref       string // branch short name, or short hash when detached
	Commit    string // full HEAD hash
	RemoteURL string // origin URL as configured
	Owner     string // forge owner, github.com remotes only
	Repo      string // forge repository name
	Root      string // worktree root; projects nested in a repo sit below it
}

// Detect opens the repository containing projectRoot and collects Meta.
// ErrNoRepository is returned when no repository encloses the path.
func Detect(projectRoot string) (*Meta, error) {
	repo, err := git.PlainOpenWithOptions(projectRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return nil, ErrNoRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	meta := &Meta{}
	if wt, err := repo.Worktree(); err == nil {
		meta.Root = wt.Filesystem.Root()
	}

	head, err := repo.Head()
	if err != nil {
		// Unborn branch (fresh init): still usable for remote detection.
		if err != plumbing.ErrReferenceNotFound {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
	} else {
		meta.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			meta.Ref = head.Name().Short()
		} else if len(meta.Commit) >= 12 {
			meta.Ref = meta.Commit[:12]
		}
	}

	if remote, err := repo.Remote(git.DefaultRemoteName); err == nil {
		urls := remote.Config().URLs
		if len(urls) > 0 {
			meta.RemoteURL = urls[0]
			meta.Owner, meta.Repo = ParseGitHubRemote(meta.RemoteURL)
		}
	}

	return meta, nil
}

// IsGitHub reports whether the remote resolved to github.com coordinates.
func (m *Meta) IsGitHub() bool { return m != nil && m.Owner != "" && m.Repo != "" }

// RepoURL returns the https browse URL for a github.com remote.
func (m *Meta) RepoURL() string {
	if !m.IsGitHub() {
		return ""
	}
	return "https://github.com/" + m.Owner + "/" + m.Repo
}

// BlobURL returns the forge URL for a file at the detected ref, with an
// optional 1-based line anchor.
func (m *Meta) BlobURL(relPath string, line int) string {
	if !m.IsGitHub() {
		return ""
	}
	ref := m.Ref
	if ref == "" {
		ref = "main"
	}
	url := m.RepoURL() + "/blob/" + ref + "/" + strings.TrimPrefix(relPath, "/")
	if line > 0 {
		url += fmt.Sprintf("#L%d", line)
	}
	return url
}

// ParseGitHubRemote extracts owner and repo from the https, ssh and scp-like
// github.com remote forms. Non-github remotes yield empty strings.
func ParseGitHubRemote(remote string) (owner, repo string) {
	s := strings.TrimSpace(remote)
	s = strings.TrimPrefix(s, "ssh://")

	idx := strings.Index(s, "github.com")
	if idx < 0 {
		return "", ""
	}
	rest := s[idx+len("github.com"):]
	if len(rest) == 0 || (rest[0] != '/' && rest[0] != ':') {
		return "", ""
	}
	rest = strings.Trim(rest[1:], "/")

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	repo = strings.TrimSuffix(parts[1], ".git")
	if repo == "" {
		return "", ""
	}
	return parts[0], repo
}
