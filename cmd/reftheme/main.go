package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/gitmeta"
	"git.home.luguber.info/inful/refdocs/internal/theme"
	"git.home.luguber.info/inful/refdocs/internal/version"
)

var CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Install struct {
		Project string `help:"Project root directory" default:"."`
		Force   bool   `help:"Overwrite assets the user has modified"`
	} `cmd:"" help:"Install theme assets into the docs workspace"`

	Apply struct {
		Site    string `help:"Rendered site directory" default:"docs/public"`
		Project string `help:"Project root directory, read for theme settings" default:"."`
	} `cmd:"" help:"Post-process a rendered site's HTML in place"`

	Uninstall struct {
		Project string `help:"Project root directory" default:"."`
	} `cmd:"" help:"Remove installed theme assets"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("reftheme"),
		kong.Description("Install and apply the refdocs site theme."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	switch ctx.Command() {
	case "install":
		if err := runInstall(CLI.Install.Project, CLI.Install.Force); err != nil {
			slog.Error("Install failed", "error", err)
			os.Exit(1)
		}
	case "apply":
		if err := runApply(CLI.Apply.Site, CLI.Apply.Project); err != nil {
			slog.Error("Apply failed", "error", err)
			os.Exit(1)
		}
	case "uninstall":
		if err := runUninstall(CLI.Uninstall.Project); err != nil {
			slog.Error("Uninstall failed", "error", err)
			os.Exit(1)
		}
	}
}

func runInstall(project string, force bool) error {
	projectRoot, err := filepath.Abs(project)
	if err != nil {
		return err
	}
	docsDir := filepath.Join(projectRoot, detectDocsDir(projectRoot))
	staticDir := filepath.Join(docsDir, "static")
	fmt.Printf("Installing theme assets into %s\n", staticDir)

	if !force {
		if modified := theme.ModifiedAssets(staticDir); len(modified) > 0 {
			return fmt.Errorf("assets modified locally: %s (use --force to overwrite)", strings.Join(modified, ", "))
		}
	}
	if err := theme.InstallAssets(staticDir); err != nil {
		return err
	}
	for _, name := range theme.AssetNames() {
		fmt.Printf("  installed %s\n", name)
	}

	if err := patchSiteConfig(docsDir); err != nil {
		return err
	}
	fmt.Println("Theme installed; run 'refdocs build' or 'hugo' to rebuild the site.")
	return nil
}

func runApply(siteDir, project string) error {
	projectRoot, err := filepath.Abs(project)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(siteDir) {
		siteDir = filepath.Join(projectRoot, siteDir)
	}
	if _, err := os.Stat(siteDir); err != nil {
		return fmt.Errorf("site directory %s: %w", siteDir, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stats, err := theme.Apply(ctx, siteDir, applyOptions(projectRoot))
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d pages, rewrote %d\n", stats.Pages, stats.Changed)
	return nil
}

func runUninstall(project string) error {
	projectRoot, err := filepath.Abs(project)
	if err != nil {
		return err
	}
	docsDir := filepath.Join(projectRoot, detectDocsDir(projectRoot))

	removed, kept, err := theme.UninstallAssets(filepath.Join(docsDir, "static"))
	if err != nil {
		return err
	}
	for _, name := range removed {
		fmt.Printf("Removed %s\n", name)
	}
	for _, name := range kept {
		fmt.Printf("Kept %s (edited by hand)\n", name)
	}
	if err := cleanSiteConfig(docsDir); err != nil {
		return err
	}
	if len(removed) == 0 && len(kept) == 0 {
		fmt.Println("Nothing to uninstall.")
	}
	return nil
}

// detectDocsDir resolves the docs workspace: the configured docs_dir when
// refdocs.yaml is present, otherwise the first common docs directory that
// already holds a hugo.yaml, otherwise "docs".
func detectDocsDir(projectRoot string) string {
	if cfg, err := config.Load(filepath.Join(projectRoot, "refdocs.yaml")); err == nil {
		return cfg.DocsDir
	}
	for _, name := range []string{"docs", "documentation", "site", "doc"} {
		if _, err := os.Stat(filepath.Join(projectRoot, name, "hugo.yaml")); err == nil {
			return name
		}
	}
	return "docs"
}

// applyOptions derives widget settings from refdocs.yaml and the enclosing
// repository; without either the theme defaults apply.
func applyOptions(projectRoot string) theme.Options {
	opts := theme.Options{DarkMode: true, SidebarFilter: true, GitHubStyle: "widget"}
	if cfg, err := config.Load(filepath.Join(projectRoot, "refdocs.yaml")); err == nil {
		opts.DarkMode = cfg.DarkModeEnabled()
		opts.SidebarFilter = cfg.SidebarFilterEnabled()
		opts.GitHubStyle = cfg.GitHub.Style
	}
	if meta, err := gitmeta.Detect(projectRoot); err == nil && meta.IsGitHub() {
		opts.GitHubOwner = meta.Owner
		opts.GitHubRepo = meta.Repo
	}
	return opts
}

// themeParams are the hugo.yaml params install adds when absent and
// uninstall removes when still at these values.
var themeParams = map[string]any{
	"darkMode":      true,
	"sidebarFilter": true,
	"githubStyle":   "widget",
}

// patchSiteConfig adds the theme parameters to an existing hugo.yaml,
// preserving everything else. Projects without one are left alone: refdocs
// generates its own config on build, and a TOML-configured Hugo site must
// not gain a second config file.
func patchSiteConfig(docsDir string) error {
	path := filepath.Join(docsDir, "hugo.yaml")
	root, err := loadSiteConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No hugo.yaml found; skipping site config patch.")
		return nil
	}
	if err != nil {
		return err
	}

	params, _ := root["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
		root["params"] = params
	}
	changed := false
	for key, val := range themeParams {
		if _, ok := params[key]; !ok {
			params[key] = val
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := writeSiteConfig(path, root); err != nil {
		return err
	}
	fmt.Printf("Updated %s with theme parameters\n", path)
	return nil
}

// cleanSiteConfig removes the theme parameters install added, but only while
// they still carry the installed values.
func cleanSiteConfig(docsDir string) error {
	path := filepath.Join(docsDir, "hugo.yaml")
	root, err := loadSiteConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	params, _ := root["params"].(map[string]any)
	if params == nil {
		return nil
	}
	changed := false
	for key, val := range themeParams {
		if have, ok := params[key]; ok && have == val {
			delete(params, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if len(params) == 0 {
		delete(root, "params")
	}
	if err := writeSiteConfig(path, root); err != nil {
		return err
	}
	fmt.Printf("Cleaned theme parameters from %s\n", path)
	return nil
}

func loadSiteConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if root == nil {
		root = map[string]any{}
	}
	return root, nil
}

func writeSiteConfig(path string, root map[string]any) error {
	out, err := yaml.Marshal(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
