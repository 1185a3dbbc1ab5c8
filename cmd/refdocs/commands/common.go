package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/eventstore"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/site"
)

// Global carries state shared by subcommands if we need it later.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"refdocs.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init       InitCmd       `cmd:"" help:"Bootstrap documentation for a Go module"`
	Build      BuildCmd      `cmd:"" help:"Build the documentation site into <docs>/public"`
	Preview    PreviewCmd    `cmd:"" help:"Build and serve the site locally with live reload"`
	Refresh    RefreshCmd    `cmd:"" help:"Re-introspect the API and update the reference sections"`
	CheckLinks CheckLinksCmd `cmd:"" name:"check-links" help:"Check http(s) links in sources and docs"`
	History    HistoryCmd    `cmd:"" help:"List recent builds from the local history"`
	Uninstall  UninstallCmd  `cmd:"" help:"Remove generated files, keeping anything the user edited"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// resolveConfigPath places a relative config path inside the project dir.
func resolveConfigPath(configPath, project string) string {
	if filepath.IsAbs(configPath) {
		return configPath
	}
	return filepath.Join(project, configPath)
}

// loadProject loads the configuration for a project directory and returns
// it together with the cleaned project root.
func loadProject(root *CLI, project string) (*config.Config, string, error) {
	if project == "" {
		project = "."
	}
	project = filepath.Clean(project)
	cfg, err := config.Load(resolveConfigPath(root.Config, project))
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, project, nil
}

// historyDBPath resolves the build-history database path. Relative paths
// live inside the docs workspace.
func historyDBPath(cfg *config.Config, projectRoot string) string {
	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, cfg.DocsDir, path)
}

// attachHistory opens the build-history store and wires it into the
// generator. A failing store degrades to a log line; builds never depend
// on history working.
func attachHistory(g *site.Generator, cfg *config.Config, projectRoot string) *eventstore.Store {
	if !cfg.HistoryEnabled() {
		return nil
	}
	store, err := eventstore.Open(historyDBPath(cfg, projectRoot))
	if err != nil {
		slog.Warn("build history unavailable", logfields.Error(err))
		return nil
	}
	g.SetHistorySink(store.Append)
	return store
}

func closeHistory(store *eventstore.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Warn("failed to close build history", logfields.Error(err))
	}
}
