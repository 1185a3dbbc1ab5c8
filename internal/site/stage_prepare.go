package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// stagePrepare lays out the docs workspace. Existing user files are left
// untouched; only missing directories are created. Staging directories left
// behind by crashed runs are removed.
func stagePrepare(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	dirs := []string{
		g.contentDir(),
		g.staticDir(),
		filepath.Join(g.docsDir, "layouts", "_default"),
		filepath.Join(g.docsDir, "layouts", "partials"),
		g.stateDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fatalErr(StagePrepare, fmt.Errorf("create %s: %w", dir, err))
		}
	}

	for _, stale := range staleStagingDirs(g.docsDir) {
		slog.Debug("removing stale staging dir", logfields.Path(stale))
		_ = os.RemoveAll(stale)
	}
	return nil
}
