package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// colorScheme is one entry of the built-in palette registry. Palette values
// surface as Hugo params and feed the CSS custom properties in refdocs.css.
type colorScheme struct {
	Primary   string
	Accent    string
	Highlight string // chroma style for code blocks
}

var colorSchemes = map[string]colorScheme{
	"flatly":  {Primary: "#2c3e50", Accent: "#18bc9c", Highlight: "github"},
	"darkly":  {Primary: "#375a7f", Accent: "#00bc8c", Highlight: "monokai"},
	"slate":   {Primary: "#3a3f44", Accent: "#7a8288", Highlight: "nord"},
	"lumen":   {Primary: "#158cba", Accent: "#ff851b", Highlight: "github"},
	"journal": {Primary: "#eb6864", Accent: "#336699", Highlight: "tango"},
}

// stageConfig generates hugo.yaml in the docs workspace.
func stageConfig(_ context.Context, bs *BuildState) error {
	scheme, ok := colorSchemes[bs.Generator.cfg.Site.Scheme]
	if !ok {
		bs.Report.Warn(StageConfig, fmt.Errorf("unknown color scheme %q, using flatly", bs.Generator.cfg.Site.Scheme))
		scheme = colorSchemes["flatly"]
	}
	data, err := marshalSiteConfig(bs, scheme)
	if err != nil {
		return fatalErr(StageConfig, err)
	}
	path := filepath.Join(bs.Generator.docsDir, "hugo.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fatalErr(StageConfig, fmt.Errorf("write hugo.yaml: %w", err))
	}
	return nil
}

// marshalSiteConfig renders the Hugo configuration. yaml.v3 emits map keys
// sorted, so output is deterministic and diff-friendly.
func marshalSiteConfig(bs *BuildState, scheme colorScheme) ([]byte, error) {
	cfg := bs.Generator.cfg

	title := cfg.Site.Title
	if title == "" && bs.Module != nil {
		title = bs.Module.Name()
	}
	baseURL := cfg.Site.BaseURL
	if baseURL == "" {
		baseURL = "/"
	}

	params := map[string]any{
		"scheme":          cfg.Site.Scheme,
		"primaryColor":    scheme.Primary,
		"accentColor":     scheme.Accent,
		"darkMode":        cfg.DarkModeEnabled(),
		"githubStyle":     cfg.GitHub.Style,
		"sourceLinks":     cfg.SourceLinksEnabled(),
		"linkPlacement":   cfg.SourceLinks.Placement,
		"sidebarFilter":   cfg.SidebarFilterEnabled(),
		"sidebarMinItems": cfg.SidebarFilter.MinItems,
	}
	if bs.Module != nil {
		params["modulePath"] = bs.Module.ModulePath
		if bs.Module.GoVersion != "" {
			params["goVersion"] = bs.Module.GoVersion
		}
	}
	if bs.Git.IsGitHub() {
		params["github"] = bs.Git.Owner + "/" + bs.Git.Repo
		params["githubOwner"] = bs.Git.Owner
		params["githubRepo"] = bs.Git.Repo
		params["repoURL"] = bs.Git.RepoURL()
	}
	if cfg.Site.Description != "" {
		params["description"] = cfg.Site.Description
	}

	menu := []map[string]any{
		{"name": "Home", "url": "/", "weight": 1},
	}
	if bs.API != nil && !bs.API.Empty() || bs.CLI != nil {
		menu = append(menu, map[string]any{"name": "Reference", "url": "/reference/", "weight": 2})
	}
	if bs.GuideDir != "" {
		menu = append(menu, map[string]any{"name": "Guide", "url": "/guide/", "weight": 3})
	}

	root := map[string]any{
		"title":        title,
		"baseURL":      baseURL,
		"languageCode": "en",
		"disableKinds": []string{"taxonomy", "term"},
		"markup": map[string]any{
			"goldmark": map[string]any{
				// Generated pages embed widget mount points as raw HTML.
				"renderer": map[string]any{"unsafe": true},
			},
			"highlight": map[string]any{
				"style":     scheme.Highlight,
				"noClasses": false,
			},
		},
		"params": params,
		"menu":   map[string]any{"main": menu},
	}

	return yaml.Marshal(root)
}
