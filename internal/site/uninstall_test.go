package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/theme"
)

func TestUninstallRemovesGeneratedFiles(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := loadFixtureConfig(t, root)
	g := NewGenerator(cfg, root).WithRenderer(NoopRenderer{})
	buildOnce(t, g)

	res, err := Uninstall(cfg, root)
	require.NoError(t, err)
	require.Empty(t, res.Kept)
	// Managed pages, layouts, theme assets plus llms.txt, hugo.yaml,
	// .gitignore, the public tree and the state dir.
	require.Equal(t, len(fixturePages)+8+len(theme.AssetNames())+1+4, res.Removed)

	docs := g.DocsDir()
	require.NoDirExists(t, filepath.Join(docs, "content"))
	require.NoDirExists(t, filepath.Join(docs, "layouts"))
	require.NoDirExists(t, filepath.Join(docs, "static"))
	require.NoDirExists(t, filepath.Join(docs, StateDirName))
	require.NoDirExists(t, g.PublicDir())
	require.NoFileExists(t, filepath.Join(docs, "hugo.yaml"))
	require.NoFileExists(t, filepath.Join(docs, ".gitignore"))

	// The workspace directory and the narrative sources are untouched.
	require.DirExists(t, docs)
	require.FileExists(t, filepath.Join(root, "README.md"))
	require.FileExists(t, filepath.Join(root, "refdocs.yaml"))
}

func TestUninstallKeepsEditedPages(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := loadFixtureConfig(t, root)
	g := NewGenerator(cfg, root).WithRenderer(NoopRenderer{})
	buildOnce(t, g)

	path := filepath.Join(g.DocsDir(), "content", "reference", "types", "widget.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, []byte("\nKeep this.\n")...), 0o644))

	res, err := Uninstall(cfg, root)
	require.NoError(t, err)
	require.Equal(t, []string{"reference/types/widget.md"}, res.Kept)
	require.FileExists(t, path)
	require.NoFileExists(t, filepath.Join(g.DocsDir(), "content", "_index.md"))
}

func TestUninstallKeepsEditedGitignore(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := loadFixtureConfig(t, root)
	g := NewGenerator(cfg, root).WithRenderer(NoopRenderer{})
	buildOnce(t, g)

	path := filepath.Join(g.DocsDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte(gitignoreTemplate+"drafts/\n"), 0o644))

	_, err := Uninstall(cfg, root)
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestUninstallOnCleanProject(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := loadFixtureConfig(t, root)

	res, err := Uninstall(cfg, root)
	require.NoError(t, err)
	require.Zero(t, res.Removed)
	require.Empty(t, res.Kept)
}
