package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file refdocs looks for in the project root.
const DefaultFileName = "refdocs.yaml"

// Config represents a project's documentation configuration.
type Config struct {
	Module  string `yaml:"module,omitempty"`  // import path; detected from go.mod when empty
	Package string `yaml:"package,omitempty"` // package dir relative to project root
	DocsDir string `yaml:"docs_dir,omitempty"`

	Site          SiteConfig          `yaml:"site,omitempty"`
	Discovery     DiscoveryConfig     `yaml:"discovery,omitempty"`
	Reference     ReferenceConfig     `yaml:"reference,omitempty"`
	SourceLinks   SourceLinksConfig   `yaml:"source_links,omitempty"`
	GitHub        GitHubConfig        `yaml:"github,omitempty"`
	SidebarFilter SidebarFilterConfig `yaml:"sidebar_filter,omitempty"`
	DarkMode      *bool               `yaml:"dark_mode,omitempty"`
	CLI           CLIConfig           `yaml:"cli,omitempty"`
	Guide         GuideConfig         `yaml:"guide,omitempty"`
	Authors       []Author            `yaml:"authors,omitempty"`
	Links         map[string]string   `yaml:"links,omitempty"`
	Watch         WatchConfig         `yaml:"watch,omitempty"`
	Preview       PreviewConfig       `yaml:"preview,omitempty"`
	History       HistoryConfig       `yaml:"history,omitempty"`
	Metrics       MetricsConfig       `yaml:"metrics,omitempty"`
	LinkCheck     LinkCheckConfig     `yaml:"link_check,omitempty"`
}

// SiteConfig drives the generated Hugo configuration.
type SiteConfig struct {
	Title       string `yaml:"title,omitempty"` // defaults to module base name
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Scheme      string `yaml:"scheme,omitempty"` // color scheme registry name
}

// Discovery methods for the documented API surface.
const (
	DiscoveryExported = "exported" // every exported identifier minus auto-excludes
	DiscoveryManifest = "manifest" // exactly the include list
)

// DiscoveryConfig selects which identifiers become reference pages.
type DiscoveryConfig struct {
	Method  string   `yaml:"method,omitempty"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ReferenceConfig tunes reference-page generation.
type ReferenceConfig struct {
	// Types with more methods than this get a separate methods section.
	LargeTypeThreshold int `yaml:"large_type_threshold,omitempty"`
	// Family key -> display title. Empty title means auto-title the key.
	Families map[string]string `yaml:"families,omitempty"`
}

// Source link placements on reference pages.
const (
	PlacementBody    = "body"
	PlacementSidebar = "sidebar"
	PlacementBoth    = "both"
)

// SourceLinksConfig controls links from documented objects to forge sources.
type SourceLinksConfig struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Placement string `yaml:"placement,omitempty"`
}

// GitHub navbar styles.
const (
	GitHubWidget = "widget"
	GitHubIcon   = "icon"
	GitHubOff    = "off"
)

// GitHubConfig controls the navbar repository affordance.
type GitHubConfig struct {
	Style string `yaml:"style,omitempty"`
}

// SidebarFilterConfig controls the sidebar search filter widget.
type SidebarFilterConfig struct {
	Enabled  *bool `yaml:"enabled,omitempty"`
	MinItems int   `yaml:"min_items,omitempty"`
}

// CLIConfig enables command-tree reference extraction.
type CLIConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Package string `yaml:"package,omitempty"` // main package dir, e.g. ./cmd/mytool
}

// GuideConfig points at the user-guide directory.
type GuideConfig struct {
	Dir string `yaml:"dir,omitempty"` // auto-detected when empty
}

// Author appears in the landing-page margin.
type Author struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role,omitempty"`
	GitHub   string `yaml:"github,omitempty"`
	Email    string `yaml:"email,omitempty"`
	Homepage string `yaml:"homepage,omitempty"`
}

// WatchConfig tunes the rebuild loop. Durations are strings ("400ms")
// validated at load time.
type WatchConfig struct {
	Debounce     string `yaml:"debounce,omitempty"`
	RebuildEvery string `yaml:"rebuild_every,omitempty"` // "0s" disables
}

// PreviewConfig tunes the local preview server.
type PreviewConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	LiveReload *bool  `yaml:"live_reload,omitempty"`
}

// HistoryConfig controls the local build-history store.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint on the preview server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// LinkCheckConfig tunes the link checker.
type LinkCheckConfig struct {
	Timeout    string   `yaml:"timeout,omitempty"`
	Ignore     []string `yaml:"ignore,omitempty"`
	NATSURL    string   `yaml:"nats_url,omitempty"`
	NATSBucket string   `yaml:"nats_bucket,omitempty"`
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	// A .env next to the config participates in ${VAR} expansion below.
	// Missing files are fine; malformed ones are not worth failing a build over.
	_ = godotenv.Load(".env")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Package: ".",
		DocsDir: "docs",
		Site: SiteConfig{
			Title:       "",
			Description: "API and user documentation",
			BaseURL:     "https://example.com/docs",
			Scheme:      "flatly",
		},
		Discovery: DiscoveryConfig{
			Method:  DiscoveryExported,
			Exclude: []string{},
		},
		Reference: ReferenceConfig{
			LargeTypeThreshold: 5,
		},
		SourceLinks: SourceLinksConfig{Placement: PlacementBoth},
		GitHub:      GitHubConfig{Style: GitHubWidget},
		SidebarFilter: SidebarFilterConfig{
			MinItems: 20,
		},
		CLI: CLIConfig{
			Enabled: false,
			Package: "./cmd/mytool",
		},
		Authors: []Author{
			{Name: "Jane Maintainer", Role: "Maintainer", GitHub: "janem"},
		},
		Links: map[string]string{
			"Report a bug": "https://github.com/example/repo/issues",
		},
		Watch:     WatchConfig{Debounce: "400ms"},
		Preview:   PreviewConfig{Addr: ":6060"},
		History:   HistoryConfig{Path: ".refdocs/history.db"},
		LinkCheck: LinkCheckConfig{Timeout: "10s"},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# refdocs configuration. Values commented in the docs default sensibly;\n" +
		"# delete anything you do not want to override.\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
