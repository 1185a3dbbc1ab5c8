package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/site"
	"git.home.luguber.info/inful/refdocs/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Watch     bool   `short:"w" help:"Rebuild on source and docs changes"`
	NoRefresh bool   `name:"no-refresh" help:"Reuse the persisted API model instead of re-parsing sources"`
	Project   string `help:"Project root directory" default:"."`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, projectRoot, err := loadProject(root, b.Project)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g := site.NewGenerator(cfg, projectRoot)
	store := attachHistory(g, cfg, projectRoot)
	defer closeHistory(store)

	opts := site.BuildOptions{NoRefresh: b.NoRefresh}
	if !b.Watch {
		report, err := g.Build(ctx, opts)
		printReport(report)
		return err
	}

	// Watch mode: the first build may fail (e.g. a syntax error mid-edit);
	// the loop keeps running so the next save can fix it.
	if report, err := g.Build(ctx, opts); err != nil {
		slog.Error("initial build failed", logfields.Error(err))
	} else {
		printReport(report)
	}
	return watchLoop(ctx, cfg, projectRoot, g.DocsDir(), func(ctx context.Context) {
		report, err := g.Build(ctx, opts)
		if err != nil {
			slog.Error("rebuild failed", logfields.Error(err))
			return
		}
		printReport(report)
	})
}

// watchLoop runs the filesystem watcher and calls rebuild on every trigger
// until ctx is canceled.
func watchLoop(ctx context.Context, cfg *config.Config, projectRoot, docsDir string, rebuild func(context.Context)) error {
	w, err := watch.New(watch.Options{
		Roots:        []string{projectRoot},
		DocsDir:      docsDir,
		Debounce:     cfg.DebounceDuration(),
		RebuildEvery: cfg.RebuildEveryDuration(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	fmt.Println("Watching for changes (ctrl-c to stop)")
	for {
		select {
		case <-ctx.Done():
			return <-runErr
		case err := <-runErr:
			return err
		case trig := <-w.Triggers():
			slog.Info("change detected, rebuilding",
				slog.String("cause", trig.Cause),
				slog.Int("events", trig.Count))
			rebuild(ctx)
		}
	}
}

// printReport writes the one-line outcome users read after every build.
func printReport(report *site.BuildReport) {
	if report == nil {
		return
	}
	fmt.Printf("Build %s: %d pages in %s (%s)\n",
		report.Outcome, report.Pages,
		report.Duration().Truncate(time.Millisecond), report.ID[:8])
	for _, warn := range report.Warnings {
		fmt.Printf("  warning: %v\n", warn)
	}
}
