package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/theme"
)

// gitignoreTemplate keeps the generated output trees out of version
// control. It is only ever written verbatim; a file the user has since
// edited is left alone.
const gitignoreTemplate = `# Managed by refdocs.
public/
public.prev/
public.staging-*
.refdocs/
resources/
`

// stageAssets installs the embedded theme assets into static/ and makes
// sure the docs workspace carries a .gitignore for the generated trees.
// When the GitHub widget is on, repository stats are prefetched so the
// widget renders without a client-side API call.
func stageAssets(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if err := theme.InstallAssets(g.staticDir()); err != nil {
		return fatalErr(StageAssets, fmt.Errorf("install theme assets: %w", err))
	}
	if err := ensureGitignore(g.docsDir); err != nil {
		return warnErr(StageAssets, err)
	}
	if g.cfg.GitHub.Style == config.GitHubWidget && bs.Git.IsGitHub() {
		theme.PrefetchRepoStats(ctx, g.staticDir(), bs.Git.Owner, bs.Git.Repo)
	}
	return nil
}

func ensureGitignore(docsDir string) error {
	path := filepath.Join(docsDir, ".gitignore")
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return os.WriteFile(path, []byte(gitignoreTemplate), 0o644)
	case err != nil:
		return fmt.Errorf("read gitignore: %w", err)
	case string(existing) == gitignoreTemplate:
		return nil
	}
	slog.Debug("leaving edited gitignore in place", logfields.Path(path))
	return nil
}
