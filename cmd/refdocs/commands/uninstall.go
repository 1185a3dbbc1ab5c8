package commands

import (
	"fmt"

	"git.home.luguber.info/inful/refdocs/internal/site"
)

// UninstallCmd implements the 'uninstall' command.
type UninstallCmd struct {
	Project string `help:"Project root directory" default:"."`
}

func (u *UninstallCmd) Run(_ *Global, root *CLI) error {
	cfg, projectRoot, err := loadProject(root, u.Project)
	if err != nil {
		return err
	}

	res, err := site.Uninstall(cfg, projectRoot)
	if err != nil {
		return fmt.Errorf("uninstall: %w", err)
	}

	fmt.Printf("Removed %d generated files from %s\n", res.Removed, cfg.DocsDir)
	for _, rel := range res.Kept {
		fmt.Printf("  kept %s (edited by hand)\n", rel)
	}
	if len(res.Kept) > 0 {
		fmt.Println("Kept pages are yours now; delete them manually if unwanted.")
	}
	return nil
}
