package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The rendered site is staged next to public/ and promoted with two renames
// so readers never observe a half-written tree.

func (g *Generator) beginStaging() (string, error) {
	staging := filepath.Join(g.docsDir, fmt.Sprintf("public.staging-%d", os.Getpid()))
	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("clear stale staging dir: %w", err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	g.stagingDir = staging
	return staging, nil
}

// finalizeStaging promotes the staging directory to public/. The previous
// public tree is parked as public.prev during the swap and removed after.
func (g *Generator) finalizeStaging() error {
	if g.stagingDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	public := g.PublicDir()
	prev := public + ".prev"

	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove stale backup: %w", err)
	}
	if _, err := os.Stat(public); err == nil {
		if err := os.Rename(public, prev); err != nil {
			return fmt.Errorf("park previous public dir: %w", err)
		}
	}
	if err := os.Rename(g.stagingDir, public); err != nil {
		// Try to restore the previous tree so the site stays serveable.
		if _, statErr := os.Stat(prev); statErr == nil {
			_ = os.Rename(prev, public)
		}
		return fmt.Errorf("promote staging dir: %w", err)
	}
	_ = os.RemoveAll(prev)
	g.stagingDir = ""
	return nil
}

// abortStaging discards the staging directory after a failed run.
func (g *Generator) abortStaging() {
	if g.stagingDir == "" {
		return
	}
	_ = os.RemoveAll(g.stagingDir)
	g.stagingDir = ""
}

// staleStagingDirs lists leftover staging directories from crashed runs.
func staleStagingDirs(docsDir string) []string {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return nil
	}
	var stale []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "public.staging-") {
			stale = append(stale, filepath.Join(docsDir, e.Name()))
		}
	}
	return stale
}
