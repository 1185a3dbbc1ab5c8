package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/config"
)

func TestResolveConfigPath(t *testing.T) {
	require.Equal(t, filepath.Join("proj", "refdocs.yaml"), resolveConfigPath("refdocs.yaml", "proj"))

	abs := filepath.Join(t.TempDir(), "elsewhere.yaml")
	require.Equal(t, abs, resolveConfigPath(abs, "proj"))
}

func TestHistoryDBPath(t *testing.T) {
	t.Run("default lives in docs workspace", func(t *testing.T) {
		cfg := &config.Config{DocsDir: "docs"}
		got := historyDBPath(cfg, "proj")
		require.Equal(t, filepath.Join("proj", "docs", ".refdocs", "history.db"), got)
	})

	t.Run("relative path joins docs workspace", func(t *testing.T) {
		cfg := &config.Config{DocsDir: "site", History: config.HistoryConfig{Path: "state/builds.db"}}
		got := historyDBPath(cfg, "proj")
		require.Equal(t, filepath.Join("proj", "site", "state", "builds.db"), got)
	})

	t.Run("absolute path wins", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "history.db")
		cfg := &config.Config{DocsDir: "docs", History: config.HistoryConfig{Path: abs}}
		require.Equal(t, abs, historyDBPath(cfg, "proj"))
	})
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "refdocs.yaml"), []byte("package: \".\"\n"), 0o644)
	require.NoError(t, err)

	root := &CLI{Config: "refdocs.yaml"}
	cfg, projectRoot, err := loadProject(root, dir)
	require.NoError(t, err)
	require.Equal(t, dir, projectRoot)
	require.Equal(t, "docs", cfg.DocsDir)

	_, _, err = loadProject(root, filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "load config")
}

func TestPreviewURL(t *testing.T) {
	cases := map[string]string{
		":6060":          "http://localhost:6060",
		"0.0.0.0:8080":   "http://localhost:8080",
		"[::]:6060":      "http://localhost:6060",
		"127.0.0.1:9999": "http://127.0.0.1:9999",
		"docs.local:80":  "http://docs.local:80",
		"nonsense":       "http://nonsense",
	}
	for addr, want := range cases {
		require.Equal(t, want, previewURL(addr), "addr %q", addr)
	}
}

func TestShortID(t *testing.T) {
	require.Equal(t, "abcd1234", shortID("abcd1234ef567890"))
	require.Equal(t, "ab12", shortID("ab12"))
}
