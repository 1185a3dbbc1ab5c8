package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/refdocs/internal/theme"
)

func TestDetectDocsDir(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, "docs", detectDocsDir(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "hugo.yaml"), []byte("title: x\n"), 0o644))
	require.Equal(t, "site", detectDocsDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "refdocs.yaml"), []byte("docs_dir: custom\n"), 0o644))
	require.Equal(t, "custom", detectDocsDir(dir))
}

func TestPatchSiteConfigPreservesUserValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hugo.yaml")

	// Without a config there is nothing to patch and nothing gets created.
	require.NoError(t, patchSiteConfig(dir))
	require.NoFileExists(t, path)

	require.NoError(t, os.WriteFile(path, []byte("title: Pond\nparams:\n  darkMode: false\n"), 0o644))
	require.NoError(t, patchSiteConfig(dir))

	root, err := loadSiteConfig(path)
	require.NoError(t, err)
	params := root["params"].(map[string]any)
	require.Equal(t, false, params["darkMode"])
	require.Equal(t, true, params["sidebarFilter"])
	require.Equal(t, "widget", params["githubStyle"])
	require.Equal(t, "Pond", root["title"])
}

func TestCleanSiteConfigRemovesOnlyInstalledValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hugo.yaml")

	require.NoError(t, os.WriteFile(path, []byte("title: Pond\n"), 0o644))
	require.NoError(t, patchSiteConfig(dir))
	require.NoError(t, cleanSiteConfig(dir))

	root, err := loadSiteConfig(path)
	require.NoError(t, err)
	require.NotContains(t, root, "params")
	require.Equal(t, "Pond", root["title"])

	require.NoError(t, os.WriteFile(path, []byte("params:\n  darkMode: false\n  sidebarFilter: true\n"), 0o644))
	require.NoError(t, cleanSiteConfig(dir))
	root, err = loadSiteConfig(path)
	require.NoError(t, err)
	params := root["params"].(map[string]any)
	require.Equal(t, false, params["darkMode"])
	require.NotContains(t, params, "sidebarFilter")
}

func TestApplyOptions(t *testing.T) {
	dir := t.TempDir()
	opts := applyOptions(dir)
	require.True(t, opts.DarkMode)
	require.True(t, opts.SidebarFilter)
	require.Equal(t, "widget", opts.GitHubStyle)

	err := os.WriteFile(filepath.Join(dir, "refdocs.yaml"), []byte("dark_mode: false\ngithub:\n  style: icon\n"), 0o644)
	require.NoError(t, err)
	opts = applyOptions(dir)
	require.False(t, opts.DarkMode)
	require.Equal(t, "icon", opts.GitHubStyle)
}

func TestInstallAndUninstall(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "hugo.yaml"), []byte("title: Pond\n"), 0o644))

	require.NoError(t, runInstall(dir, false))
	for _, name := range theme.AssetNames() {
		require.FileExists(t, filepath.Join(docs, "static", name))
	}
	root, err := loadSiteConfig(filepath.Join(docs, "hugo.yaml"))
	require.NoError(t, err)
	require.Contains(t, root, "params")

	edited := filepath.Join(docs, "static", "refdocs.css")
	require.NoError(t, os.WriteFile(edited, []byte("/* mine */\n"), 0o644))
	require.ErrorContains(t, runInstall(dir, false), "use --force")
	require.NoError(t, runInstall(dir, true))

	require.NoError(t, runUninstall(dir))
	for _, name := range theme.AssetNames() {
		require.NoFileExists(t, filepath.Join(docs, "static", name))
	}
}
