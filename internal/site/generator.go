package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/refdocs/internal/apidoc"
	"git.home.luguber.info/inful/refdocs/internal/clidoc"
	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/gitmeta"
	"git.home.luguber.info/inful/refdocs/internal/gomod"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/metrics"
)

// StateDirName is the tool-state directory inside the docs workspace. It
// holds the persisted API model, the page manifest, build reports and the
// build history database.
const StateDirName = ".refdocs"

// HistorySink receives the final report of every build, successful or not.
type HistorySink func(ctx context.Context, report *BuildReport) error

// Generator drives the staged site build for one project.
type Generator struct {
	cfg         *config.Config
	projectRoot string
	docsDir     string
	stagingDir  string // render staging; empty until the render stage
	renderer    Renderer
	recorder    metrics.Recorder
	history     HistorySink
}

// NewGenerator creates a generator for the project rooted at projectRoot.
func NewGenerator(cfg *config.Config, projectRoot string) *Generator {
	root := filepath.Clean(projectRoot)
	return &Generator{
		cfg:         cfg,
		projectRoot: root,
		docsDir:     filepath.Join(root, cfg.DocsDir),
		renderer:    BinaryRenderer{},
		recorder:    metrics.NoopRecorder{},
	}
}

// WithRenderer swaps the rendering strategy. Returns the generator for
// chaining.
func (g *Generator) WithRenderer(r Renderer) *Generator {
	if r != nil {
		g.renderer = r
	}
	return g
}

// SetRecorder injects a metrics recorder.
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		g.recorder = metrics.NoopRecorder{}
		return g
	}
	g.recorder = r
	return g
}

// SetHistorySink injects the build-history append hook.
func (g *Generator) SetHistorySink(sink HistorySink) *Generator {
	g.history = sink
	return g
}

// Config exposes the underlying configuration.
func (g *Generator) Config() *config.Config { return g.cfg }

// ProjectRoot is the module root holding go.mod and refdocs.yaml.
func (g *Generator) ProjectRoot() string { return g.projectRoot }

// DocsDir is the docs workspace (narrative sources plus generated tree).
func (g *Generator) DocsDir() string { return g.docsDir }

// PublicDir is the published site directory inside the docs workspace.
func (g *Generator) PublicDir() string { return filepath.Join(g.docsDir, "public") }

func (g *Generator) stateDir() string { return filepath.Join(g.docsDir, StateDirName) }

func (g *Generator) contentDir() string { return filepath.Join(g.docsDir, "content") }

func (g *Generator) staticDir() string { return filepath.Join(g.docsDir, "static") }

// BuildOptions modify a single build run.
type BuildOptions struct {
	// NoRefresh reuses the persisted API model instead of re-parsing the
	// package sources.
	NoRefresh bool
}

// BuildState carries shared state across stages of one run.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport
	Options   BuildOptions

	Module *gomod.Info
	Git    *gitmeta.Meta // nil outside a git repository
	API    *apidoc.Package
	CLI    *clidoc.Tree // nil unless cli.enabled and a tree was found

	// GuideDir is the discovered guide source directory, "" when absent.
	GuideDir string

	// Manifest maps managed page paths (relative to content/, slash
	// separated) to the fingerprint each carries on disk after this run.
	Manifest map[string]string
}

// Build runs the full pipeline and returns its report. The report is
// non-nil even on failure so callers can persist and display it.
func (g *Generator) Build(ctx context.Context, opts BuildOptions) (*BuildReport, error) {
	report := newBuildReport()
	bs := &BuildState{Generator: g, Report: report, Options: opts, Manifest: map[string]string{}}
	slog.Info("starting site build",
		logfields.BuildID(report.ID),
		logfields.Path(g.docsDir),
		slog.Bool("no_refresh", opts.NoRefresh))

	stages := []StageDef{
		{StagePrepare, stagePrepare},
		{StageInspect, stageInspect},
		{StageConfig, stageConfig},
		{StageLayouts, stageLayouts},
		{StageLanding, stageLanding},
		{StageReference, stageReference},
		{StageCLIDocs, stageCLIDocs},
		{StageGuides, stageGuides},
		{StageSourceLinks, stageSourceLinks},
		{StageLLMs, stageLLMs},
		{StageAssets, stageAssets},
		{StageRender, stageRender},
		{StageTheme, stageTheme},
		{StagePublish, stagePublish},
	}

	runErr := runStages(ctx, bs, stages)
	if runErr != nil {
		g.abortStaging()
	}
	report.finish()

	if err := report.Persist(g.stateDir()); err != nil {
		slog.Warn("failed to persist build report", logfields.Error(err))
	}
	if g.history != nil {
		if err := g.history(ctx, report); err != nil {
			slog.Warn("failed to append build history", logfields.Error(err))
		}
	}
	g.recorder.ObserveBuildDuration(report.Duration())
	g.recorder.IncBuildOutcome(string(report.Outcome))
	g.recorder.SetPagesGenerated(report.Pages)

	if runErr != nil {
		return report, runErr
	}
	slog.Info("site build completed", logfields.BuildID(report.ID), logfields.Pages(report.Pages),
		slog.String("outcome", string(report.Outcome)))
	return report, nil
}

// writePage writes a content page and counts it in the report.
func (bs *BuildState) writePage(relPath string, data []byte) error {
	path := filepath.Join(bs.Generator.contentDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", relPath, err)
	}
	bs.Report.Pages++
	return nil
}
