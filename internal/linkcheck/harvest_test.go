package linkcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScanHarvestsSourcesDocsAndReadme(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md": "Project homepage: https://refdocs.example.com.\n",
		"internal/client.go": "package client\n\n" +
			"// Talks to https://api.example.com/v1 over HTTP.\n" +
			"const endpoint = \"https://api.example.com/v1\"\n",
		"internal/vendor/dep.go":        "package dep // https://vendored.example.com\n",
		"internal/.cache/gen.go":        "package gen // https://hidden.example.com\n",
		"docs/index.md":                 "Read the guide at https://docs.example.com/guide, then start.\n",
		"docs/guide/install.md":         "Download Go (see https://go.dev/dl/).\n",
		"docs/public/index.md":          "https://generated.example.com\n",
		"docs/content/ref.md":           "https://generated.example.com\n",
		"docs/public.staging-1a2b/x.md": "https://staging.example.com\n",
	})

	h, err := Scan(ScanOptions{
		ProjectRoot: root,
		PackageDir:  filepath.Join(root, "internal"),
		DocsDir:     filepath.Join(root, "docs"),
	})
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://api.example.com/v1",
		"https://docs.example.com/guide",
		"https://go.dev/dl/",
		"https://refdocs.example.com",
	}, h.Sorted())

	require.Equal(t, []string{"internal/client.go"}, h.URLs["https://api.example.com/v1"])
	require.Equal(t, []string{"README.md"}, h.URLs["https://refdocs.example.com"])
	require.Equal(t, []string{"https://docs.example.com/guide"}, h.ByFile["docs/index.md"])
}

func TestScanDocsOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pkg/source.go": "package pkg // https://source.example.com\n",
		"docs/index.md": "https://docs.example.com\n",
	})

	h, err := Scan(ScanOptions{
		ProjectRoot: root,
		PackageDir:  filepath.Join(root, "pkg"),
		DocsDir:     filepath.Join(root, "docs"),
		DocsOnly:    true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://docs.example.com"}, h.Sorted())
}

func TestScanToleratesMissingDirs(t *testing.T) {
	root := t.TempDir()
	h, err := Scan(ScanOptions{
		ProjectRoot: root,
		PackageDir:  filepath.Join(root, "absent"),
		DocsDir:     filepath.Join(root, "docs"),
	})
	require.NoError(t, err)
	require.Empty(t, h.Sorted())
}

func TestHarvestTextOptOutMarker(t *testing.T) {
	content := "Real: https://real.example.com\n" +
		"Fake: http://fake.example.com (no-link-check)\n" +
		"Adjacent: http://adjacent.example.com(no-link-check)\n"
	require.Equal(t, []string{"https://real.example.com"}, harvestText(content))
}

func TestHarvestTextDedupesInOrder(t *testing.T) {
	content := "https://b.example.com then https://a.example.com then https://b.example.com again\n"
	require.Equal(t,
		[]string{"https://b.example.com", "https://a.example.com"},
		harvestText(content))
}

func TestCleanURL(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain", "https://example.com/path", "https://example.com/path", true},
		{"trailing period", "https://example.com/path.", "https://example.com/path", true},
		{"punctuation run", "https://example.com/path.,;", "https://example.com/path", true},
		{"unbalanced parens", "https://example.com/a))", "https://example.com/a", true},
		{"balanced parens kept", "https://example.com/Go_(language)", "https://example.com/Go_(language)", true},
		{"template placeholder", "https://example.com/{version}/doc", "", false},
		{"swallowed marker", "http://example.com(no-link-check", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := cleanURL(tc.raw)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
