package site

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// Refresh re-introspects the package API and rewrites the site
// configuration and the reference tree, including removing pages whose
// objects no longer exist. Landing pages, guides and the rendered site
// stay untouched; the next build or preview picks the refreshed pages up.
func (g *Generator) Refresh(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport()
	bs := &BuildState{Generator: g, Report: report, Manifest: map[string]string{}}
	slog.Info("refreshing reference sections",
		logfields.BuildID(report.ID),
		logfields.Path(g.docsDir))

	stages := []StageDef{
		{StagePrepare, stagePrepare},
		{StageInspect, stageInspect},
		{StageConfig, stageConfig},
		{StageReference, stageReference},
	}
	runErr := runStages(ctx, bs, stages)
	if runErr == nil {
		refreshManifest(bs)
	}
	report.finish()

	if runErr != nil {
		return report, runErr
	}
	slog.Info("reference sections refreshed",
		logfields.BuildID(report.ID),
		logfields.Pages(report.Pages))
	return report, nil
}

// refreshManifest prunes orphaned reference pages and folds the refreshed
// reference entries into the stored manifest, leaving every entry outside
// reference/ as the last full build recorded it.
func refreshManifest(bs *BuildState) {
	old, err := LoadManifest(bs.Generator.stateDir())
	if err != nil {
		bs.Report.Warn(StageReference, err)
		old = map[string]string{}
	}
	prunePages(bs, StageReference, old, "reference/")
	for rel, fp := range old {
		if strings.HasPrefix(rel, "reference/") {
			continue
		}
		if _, ok := bs.Manifest[rel]; !ok {
			bs.Manifest[rel] = fp
		}
	}
	if err := writeManifest(bs); err != nil {
		bs.Report.Warn(StageReference, err)
	}
}
