package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/config"
)

func newStagingGenerator(t *testing.T) *Generator {
	t.Helper()
	g := NewGenerator(&config.Config{DocsDir: "docs"}, t.TempDir())
	require.NoError(t, os.MkdirAll(g.DocsDir(), 0o755))
	return g
}

func TestFinalizeStagingReplacesPublic(t *testing.T) {
	g := newStagingGenerator(t)
	require.NoError(t, os.MkdirAll(g.PublicDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(g.PublicDir(), "index.html"), []byte("old"), 0o644))

	staging, err := g.beginStaging()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "index.html"), []byte("new"), 0o644))

	require.NoError(t, g.finalizeStaging())

	data, err := os.ReadFile(filepath.Join(g.PublicDir(), "index.html"))
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	require.NoDirExists(t, staging)
	require.NoDirExists(t, g.PublicDir()+".prev")
}

func TestFinalizeStagingFirstPublish(t *testing.T) {
	g := newStagingGenerator(t)
	staging, err := g.beginStaging()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "index.html"), []byte("new"), 0o644))

	require.NoError(t, g.finalizeStaging())
	require.FileExists(t, filepath.Join(g.PublicDir(), "index.html"))
}

func TestFinalizeStagingWithoutBegin(t *testing.T) {
	g := newStagingGenerator(t)
	require.Error(t, g.finalizeStaging())
}

func TestAbortStagingDiscardsTree(t *testing.T) {
	g := newStagingGenerator(t)
	staging, err := g.beginStaging()
	require.NoError(t, err)

	g.abortStaging()
	require.NoDirExists(t, staging)
	// Aborting again is a no-op.
	g.abortStaging()
}

func TestStaleStagingDirs(t *testing.T) {
	g := newStagingGenerator(t)
	docs := g.DocsDir()
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "public.staging-999"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "public"), 0o755))
	// A stray file with the prefix is not a staging directory.
	require.NoError(t, os.WriteFile(filepath.Join(docs, "public.staging-note"), []byte("x"), 0o644))

	require.Equal(t, []string{filepath.Join(docs, "public.staging-999")}, staleStagingDirs(docs))
}
