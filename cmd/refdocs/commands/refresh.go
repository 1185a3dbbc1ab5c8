package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/refdocs/internal/site"
)

// RefreshCmd implements the 'refresh' command.
type RefreshCmd struct {
	Project string `help:"Project root directory" default:"."`
}

func (r *RefreshCmd) Run(_ *Global, root *CLI) error {
	cfg, projectRoot, err := loadProject(root, r.Project)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := site.NewGenerator(cfg, projectRoot).Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Refreshed %d reference pages\n", report.Pages)
	for _, warn := range report.Warnings {
		fmt.Printf("  warning: %v\n", warn)
	}
	return nil
}
