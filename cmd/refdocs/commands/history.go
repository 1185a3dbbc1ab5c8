package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit   int    `help:"Number of builds to show" default:"10"`
	Project string `help:"Project root directory" default:"."`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, projectRoot, err := loadProject(root, h.Project)
	if err != nil {
		return err
	}
	if !cfg.HistoryEnabled() {
		fmt.Println("Build history is disabled in the configuration.")
		return nil
	}

	dbPath := historyDBPath(cfg, projectRoot)
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		// Opening would create an empty database; stat first so that
		// 'history' before the first build stays a no-op.
		fmt.Println("No build history yet; run 'refdocs build' first.")
		return nil
	}

	store, err := eventstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return fmt.Errorf("read build history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No build history yet; run 'refdocs build' first.")
		return nil
	}

	fmt.Printf("%-8s  %-19s  %-8s  %9s  %5s  %s\n", "ID", "STARTED", "OUTCOME", "DURATION", "PAGES", "WARNINGS")
	for _, rec := range records {
		fmt.Printf("%-8s  %-19s  %-8s  %9s  %5d  %d\n",
			shortID(rec.ID),
			rec.Started.Local().Format("2006-01-02 15:04:05"),
			rec.Outcome,
			rec.Duration.Truncate(time.Millisecond),
			rec.Pages,
			rec.Warnings,
		)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
