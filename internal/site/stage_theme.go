package site

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/refdocs/internal/theme"
)

// stageTheme post-processes the rendered HTML in the staging directory.
// Failures degrade to a warning: the un-themed site is still complete.
func stageTheme(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if g.stagingDir == "" {
		slog.Debug("no rendered output to theme")
		return nil
	}

	cfg := g.cfg
	opts := theme.Options{
		DarkMode:      cfg.DarkModeEnabled(),
		SidebarFilter: cfg.SidebarFilterEnabled(),
		GitHubStyle:   cfg.GitHub.Style,
	}
	if bs.Git.IsGitHub() {
		opts.GitHubOwner = bs.Git.Owner
		opts.GitHubRepo = bs.Git.Repo
	}

	stats, err := theme.Apply(ctx, g.stagingDir, opts)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return canceledErr(StageTheme, cerr)
		}
		return warnErr(StageTheme, fmt.Errorf("apply theme: %w", err))
	}
	slog.Debug("applied theme", slog.Int("pages", stats.Pages))
	return nil
}
