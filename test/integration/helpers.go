package integration

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/frontmatter"
	"git.home.luguber.info/inful/refdocs/internal/site"
)

// setupProject copies the fixture project into a temp dir and turns it into
// a git repository with a github origin, so ref detection and source links
// behave like they do on a real checkout.
func setupProject(t *testing.T, fixture string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, copyDir(fixture, root), "copy fixture project")

	repo, err := git.PlainInit(root, false)
	require.NoError(t, err, "init fixture repo")

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/pond.git"},
	})
	require.NoError(t, err, "add origin remote")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err, "stage fixture files")
	_, err = wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "commit fixture files")

	// The default branch name depends on the git environment; pin it so
	// golden source links always point at main.
	head, err := repo.Head()
	require.NoError(t, err)
	if head.Name().Short() != "main" {
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{
			Branch: "refs/heads/main",
			Create: true,
		}))
		_ = repo.Storer.RemoveReference(head.Name())
	}

	return root
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}

// buildSite runs a full build over the project with rendering stubbed out.
func buildSite(t *testing.T, root string) (*site.Generator, *site.BuildReport) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(root, config.DefaultFileName))
	require.NoError(t, err)

	g := site.NewGenerator(cfg, root).WithRenderer(site.NoopRenderer{})
	report, err := g.Build(context.Background(), site.BuildOptions{})
	require.NoError(t, err)
	return g, report
}

// pageInfo is the golden shape of one generated page: its location and the
// stable frontmatter fields. Volatile fields (uid, fingerprint, lastmod)
// stay out so goldens survive rebuilds.
type pageInfo struct {
	Path  string `json:"path"`
	Kind  string `json:"kind,omitempty"`
	Title string `json:"title"`
}

type siteStructure struct {
	Pages []pageInfo `json:"pages"`
}

func collectPages(t *testing.T, contentDir string) []pageInfo {
	t.Helper()
	var pages []pageInfo
	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		pages = append(pages, pageInfo{
			Path:  filepath.ToSlash(rel),
			Kind:  doc.String("kind"),
			Title: doc.String("title"),
		})
		return nil
	})
	require.NoError(t, err)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages
}
