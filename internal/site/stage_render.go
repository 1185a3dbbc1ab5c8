package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// stageRender prunes orphaned managed pages and runs the renderer against
// the docs workspace, writing into a fresh staging directory. A missing
// hugo binary degrades to a warning: the markdown tree is complete and
// usable, only the HTML site is absent.
func stageRender(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if old, err := LoadManifest(g.stateDir()); err == nil {
		prunePages(bs, StageRender, old, "")
	} else {
		bs.Report.Warn(StageRender, fmt.Errorf("read previous page manifest: %w", err))
	}

	staging, err := g.beginStaging()
	if err != nil {
		return fatalErr(StageRender, err)
	}

	if err := g.renderer.Render(ctx, g.docsDir, staging); err != nil {
		g.abortStaging()
		if errors.Is(err, ErrHugoNotFound) {
			return warnErr(StageRender, err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return canceledErr(StageRender, cerr)
		}
		return fatalErr(StageRender, fmt.Errorf("render site: %w", err))
	}

	slog.Debug("rendered site", logfields.Path(staging))
	return nil
}
