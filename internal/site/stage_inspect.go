package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/apidoc"
	"git.home.luguber.info/inful/refdocs/internal/clidoc"
	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/gitmeta"
	"git.home.luguber.info/inful/refdocs/internal/gomod"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// modelFileName is the persisted introspection snapshot inside the state
// dir, reused by --no-refresh builds and the refresh command.
const modelFileName = "model.json"

// modelSnapshot is the JSON shape of the persisted introspection result.
type modelSnapshot struct {
	SchemaVersion int             `json:"schema_version"`
	Module        *gomod.Info     `json:"module"`
	Git           *gitmeta.Meta   `json:"git,omitempty"`
	API           *apidoc.Package `json:"api,omitempty"`
	CLI           *clidoc.Tree    `json:"cli,omitempty"`
}

// stageInspect gathers everything later stages read: module facts, git
// facts, the API model and (optionally) the CLI tree. With --no-refresh the
// persisted snapshot is loaded instead of re-parsing sources.
func stageInspect(ctx context.Context, bs *BuildState) error {
	g := bs.Generator

	if bs.Options.NoRefresh {
		if err := loadModel(bs); err != nil {
			return fatalErr(StageInspect, err)
		}
		bs.GuideDir = discoverGuideDir(g.cfg, g.docsDir)
		return nil
	}

	module, err := gomod.Read(g.projectRoot)
	if err != nil {
		return fatalErr(StageInspect, err)
	}
	bs.Module = module

	meta, err := gitmeta.Detect(g.projectRoot)
	switch {
	case err == nil:
		bs.Git = meta
	case errors.Is(err, gitmeta.ErrNoRepository):
		slog.Debug("no git repository; source links disabled", logfields.Path(g.projectRoot))
	default:
		bs.Report.Warn(StageInspect, fmt.Errorf("git detection failed: %w", err))
	}
	bs.Report.ModulePath = module.ModulePath
	if bs.Git != nil {
		bs.Report.Ref = bs.Git.Ref
	}

	pkgDir := filepath.Join(g.projectRoot, g.cfg.Package)
	api, err := apidoc.Load(apidoc.LoadOptions{
		Dir:                pkgDir,
		ImportPath:         importPath(g.cfg, module),
		Manifest:           g.cfg.Discovery.Method == config.DiscoveryManifest,
		Include:            g.cfg.Discovery.Include,
		Exclude:            g.cfg.Discovery.Exclude,
		Families:           g.cfg.Reference.Families,
		LargeTypeThreshold: g.cfg.Reference.LargeTypeThreshold,
	})
	switch {
	case err == nil:
		bs.API = api
		for _, warning := range api.Warnings {
			bs.Report.Warn(StageInspect, errors.New(warning))
		}
		if api.Empty() {
			bs.Report.Warn(StageInspect, fmt.Errorf("package %s exports nothing documentable", api.ImportPath))
		}
	case errors.Is(err, apidoc.ErrNoPackage):
		bs.Report.Warn(StageInspect, fmt.Errorf("no Go package in %s; building without a reference section", pkgDir))
	default:
		return fatalErr(StageInspect, fmt.Errorf("introspect %s: %w", pkgDir, err))
	}

	if g.cfg.CLI.Enabled {
		cliDir := filepath.Join(g.projectRoot, g.cfg.CLI.Package)
		tree, err := clidoc.Load(clidoc.LoadOptions{Dir: cliDir, BinaryName: module.Name()})
		if err != nil {
			slog.Info("no CLI command tree found", logfields.Path(cliDir), logfields.Error(err))
		} else {
			bs.CLI = tree
		}
	}

	bs.GuideDir = discoverGuideDir(g.cfg, g.docsDir)

	if err := saveModel(bs); err != nil {
		bs.Report.Warn(StageInspect, fmt.Errorf("persist model: %w", err))
	}
	return nil
}

// importPath resolves the documented package's import path from config or
// from the module path plus the package subdirectory.
func importPath(cfg *config.Config, module *gomod.Info) string {
	if cfg.Module != "" {
		return cfg.Module
	}
	rel := filepath.ToSlash(filepath.Clean(cfg.Package))
	if rel == "." || rel == "" {
		return module.ModulePath
	}
	return module.ModulePath + "/" + strings.TrimPrefix(rel, "./")
}

// discoverGuideDir finds the user-guide source directory: the configured
// override, else the first conventional candidate containing markdown.
func discoverGuideDir(cfg *config.Config, docsDir string) string {
	if cfg.Guide.Dir != "" {
		dir := filepath.Join(docsDir, cfg.Guide.Dir)
		if containsMarkdown(dir) {
			return dir
		}
		slog.Warn("configured guide dir has no markdown", logfields.Path(dir))
		return ""
	}
	for _, name := range []string{"guide", "guides", "user-guide", "user_guide"} {
		dir := filepath.Join(docsDir, name)
		if containsMarkdown(dir) {
			return dir
		}
	}
	return ""
}

func containsMarkdown(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			return true
		}
	}
	return false
}

func (g *Generator) modelPath() string { return filepath.Join(g.stateDir(), modelFileName) }

func saveModel(bs *BuildState) error {
	snap := modelSnapshot{
		SchemaVersion: 1,
		Module:        bs.Module,
		Git:           bs.Git,
		API:           bs.API,
		CLI:           bs.CLI,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(bs.Generator.modelPath(), append(data, '\n'))
}

func loadModel(bs *BuildState) error {
	data, err := os.ReadFile(bs.Generator.modelPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoModel
		}
		return fmt.Errorf("read model: %w", err)
	}
	var snap modelSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	if snap.Module == nil {
		return fmt.Errorf("model snapshot is missing module facts")
	}
	bs.Module = snap.Module
	bs.Git = snap.Git
	bs.API = snap.API
	bs.CLI = snap.CLI
	bs.Report.ModulePath = snap.Module.ModulePath
	if snap.Git != nil {
		bs.Report.Ref = snap.Git.Ref
	}
	slog.Debug("loaded persisted API model", logfields.Path(bs.Generator.modelPath()))
	return nil
}
