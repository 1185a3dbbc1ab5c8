package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/theme"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force   bool   `help:"Overwrite an existing configuration file"`
	Project string `help:"Project root directory" default:"."`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	project := filepath.Clean(i.Project)
	cfgPath := resolveConfigPath(root.Config, project)

	fmt.Printf("Writing configuration to %s\n", cfgPath)
	if err := config.Init(cfgPath, i.Force); err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("reload written config: %w", err)
	}

	docsDir := filepath.Join(project, cfg.DocsDir)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return fmt.Errorf("create docs workspace: %w", err)
	}
	fmt.Printf("Created docs workspace %s\n", docsDir)

	staticDir := filepath.Join(docsDir, "static")
	if err := theme.InstallAssets(staticDir); err != nil {
		return fmt.Errorf("install theme assets: %w", err)
	}
	for _, name := range theme.AssetNames() {
		fmt.Printf("Installed %s\n", filepath.Join(staticDir, name))
	}

	fmt.Println("Initialized successfully; run 'refdocs build' next")
	return nil
}
