package gitmeta

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a repository with one commit on main and an origin remote.
func initRepo(t *testing.T, remoteURL string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if remoteURL != "" {
		if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: git.DefaultRemoteName,
			URLs: []string{remoteURL},
		}); err != nil {
			t.Fatalf("create remote: %v", err)
		}
	}
	return dir
}

func TestDetect(t *testing.T) {
	dir := initRepo(t, "git@github.com:acme/widget.git")

	meta, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if meta.Ref != "main" {
		t.Errorf("Ref = %q, want main", meta.Ref)
	}
	if len(meta.Commit) != 40 {
		t.Errorf("Commit = %q, want full hash", meta.Commit)
	}
	if meta.Owner != "acme" || meta.Repo != "widget" {
		t.Errorf("Owner/Repo = %q/%q, want acme/widget", meta.Owner, meta.Repo)
	}
	if !meta.IsGitHub() {
		t.Error("IsGitHub() = false, want true")
	}

	// Detection also works from a subdirectory of the worktree.
	sub := filepath.Join(dir, "internal", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	subMeta, err := Detect(sub)
	if err != nil {
		t.Fatalf("Detect(subdir) error: %v", err)
	}
	if subMeta.Commit != meta.Commit {
		t.Error("Detect(subdir) resolved a different commit")
	}
	if subMeta.Root != meta.Root {
		t.Errorf("Detect(subdir) Root = %q, want %q", subMeta.Root, meta.Root)
	}
}

func TestDetectNoRepository(t *testing.T) {
	_, err := Detect(t.TempDir())
	if !errors.Is(err, ErrNoRepository) {
		t.Fatalf("Detect() error = %v, want ErrNoRepository", err)
	}
}

func TestDetectWithoutRemote(t *testing.T) {
	meta, err := Detect(initRepo(t, ""))
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if meta.IsGitHub() {
		t.Error("IsGitHub() = true without a remote")
	}
	if meta.RepoURL() != "" || meta.BlobURL("a.go", 1) != "" {
		t.Error("URL helpers should degrade to empty without forge coordinates")
	}
}

func TestParseGitHubRemote(t *testing.T) {
	cases := []struct {
		remote string
		owner  string
		repo   string
	}{
		{"https://github.com/acme/widget", "acme", "widget"},
		{"https://github.com/acme/widget.git", "acme", "widget"},
		{"git@github.com:acme/widget.git", "acme", "widget"},
		{"ssh://git@github.com/acme/widget.git", "acme", "widget"},
		{"https://github.com/acme/widget/", "acme", "widget"},
		{"https://gitlab.com/acme/widget.git", "", ""},
		{"https://github.com/acme", "", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		owner, repo := ParseGitHubRemote(tc.remote)
		if owner != tc.owner || repo != tc.repo {
			t.Errorf("ParseGitHubRemote(%q) = %q/%q, want %q/%q",
				tc.remote, owner, repo, tc.owner, tc.repo)
		}
	}
}

func TestBlobURL(t *testing.T) {
	meta := &Meta{Ref: "main", Owner: "acme", Repo: "widget"}
	got := meta.BlobURL("internal/client.go", 42)
	want := "https://github.com/acme/widget/blob/main/internal/client.go#L42"
	if got != want {
		t.Errorf("BlobURL = %q, want %q", got, want)
	}
	if got := meta.BlobURL("doc.go", 0); got != "https://github.com/acme/widget/blob/main/doc.go" {
		t.Errorf("BlobURL without line = %q", got)
	}
}
