package config

import "time"

// Defaults applied after unmarshal so zero-value configs behave sensibly.
const (
	DefaultDocsDir            = "docs"
	DefaultScheme             = "flatly"
	DefaultLargeTypeThreshold = 5
	DefaultSidebarMinItems    = 20
	DefaultDebounce           = "400ms"
	DefaultPreviewAddr        = ":6060"
	DefaultHistoryPath        = ".refdocs/history.db"
	DefaultLinkCheckTimeout   = "10s"
	DefaultNATSBucket         = "refdocs-links"
)

func applyDefaults(config *Config) {
	if config.Package == "" {
		config.Package = "."
	}
	if config.DocsDir == "" {
		config.DocsDir = DefaultDocsDir
	}
	if config.Site.Scheme == "" {
		config.Site.Scheme = DefaultScheme
	}
	if config.Discovery.Method == "" {
		config.Discovery.Method = DiscoveryExported
	}
	if config.Reference.LargeTypeThreshold == 0 {
		config.Reference.LargeTypeThreshold = DefaultLargeTypeThreshold
	}
	if config.SourceLinks.Placement == "" {
		config.SourceLinks.Placement = PlacementBoth
	}
	if config.GitHub.Style == "" {
		config.GitHub.Style = GitHubWidget
	}
	if config.SidebarFilter.MinItems == 0 {
		config.SidebarFilter.MinItems = DefaultSidebarMinItems
	}
	if config.Watch.Debounce == "" {
		config.Watch.Debounce = DefaultDebounce
	}
	if config.Watch.RebuildEvery == "" {
		config.Watch.RebuildEvery = "0s"
	}
	if config.Preview.Addr == "" {
		config.Preview.Addr = DefaultPreviewAddr
	}
	if config.History.Path == "" {
		config.History.Path = DefaultHistoryPath
	}
	if config.LinkCheck.Timeout == "" {
		config.LinkCheck.Timeout = DefaultLinkCheckTimeout
	}
	if config.LinkCheck.NATSBucket == "" {
		config.LinkCheck.NATSBucket = DefaultNATSBucket
	}
}

// Tri-state bools default to enabled; an explicit "false" in YAML disables.

func (c *Config) DarkModeEnabled() bool      { return c.DarkMode == nil || *c.DarkMode }
func (c *Config) SourceLinksEnabled() bool   { return c.SourceLinks.Enabled == nil || *c.SourceLinks.Enabled }
func (c *Config) SidebarFilterEnabled() bool { return c.SidebarFilter.Enabled == nil || *c.SidebarFilter.Enabled }
func (c *Config) HistoryEnabled() bool       { return c.History.Enabled == nil || *c.History.Enabled }
func (c *Config) LiveReloadEnabled() bool    { return c.Preview.LiveReload == nil || *c.Preview.LiveReload }

// Duration accessors re-parse the validated string fields; validation has
// already rejected unparseable values, so the fallback only guards callers
// that skipped Load.

func (c *Config) DebounceDuration() time.Duration {
	return parseDurationOr(c.Watch.Debounce, 400*time.Millisecond)
}

func (c *Config) RebuildEveryDuration() time.Duration {
	return parseDurationOr(c.Watch.RebuildEvery, 0)
}

func (c *Config) LinkCheckTimeoutDuration() time.Duration {
	return parseDurationOr(c.LinkCheck.Timeout, 10*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
