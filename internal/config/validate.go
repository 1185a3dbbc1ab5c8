package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// validateConfig validates the configuration after defaults have been applied.
func validateConfig(cfg *Config) error {
	v := &configValidator{config: cfg}
	return v.validate()
}

// configValidator coordinates validation across the configuration domains.
type configValidator struct {
	config *Config
}

func (cv *configValidator) validate() error {
	if err := cv.validateDiscovery(); err != nil {
		return err
	}
	if err := cv.validateReference(); err != nil {
		return err
	}
	if err := cv.validatePresentation(); err != nil {
		return err
	}
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateDurations(); err != nil {
		return err
	}
	return nil
}

func (cv *configValidator) validateDiscovery() error {
	d := cv.config.Discovery
	switch d.Method {
	case DiscoveryExported, DiscoveryManifest:
	default:
		return fmt.Errorf("discovery.method must be %q or %q, got %q",
			DiscoveryExported, DiscoveryManifest, d.Method)
	}
	if d.Method == DiscoveryManifest && len(d.Include) == 0 {
		return fmt.Errorf("discovery.method %q requires a non-empty discovery.include list", DiscoveryManifest)
	}
	return nil
}

func (cv *configValidator) validateReference() error {
	if cv.config.Reference.LargeTypeThreshold < 1 {
		return fmt.Errorf("reference.large_type_threshold must be positive, got %d",
			cv.config.Reference.LargeTypeThreshold)
	}
	for key := range cv.config.Reference.Families {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("reference.families contains an empty family key")
		}
	}
	return nil
}

func (cv *configValidator) validatePresentation() error {
	switch cv.config.SourceLinks.Placement {
	case PlacementBody, PlacementSidebar, PlacementBoth:
	default:
		return fmt.Errorf("source_links.placement must be one of body, sidebar, both; got %q",
			cv.config.SourceLinks.Placement)
	}
	switch cv.config.GitHub.Style {
	case GitHubWidget, GitHubIcon, GitHubOff:
	default:
		return fmt.Errorf("github.style must be one of widget, icon, off; got %q", cv.config.GitHub.Style)
	}
	if cv.config.SidebarFilter.MinItems < 1 {
		return fmt.Errorf("sidebar_filter.min_items must be positive, got %d", cv.config.SidebarFilter.MinItems)
	}
	return nil
}

func (cv *configValidator) validatePaths() error {
	if filepath.IsAbs(cv.config.DocsDir) {
		return fmt.Errorf("docs_dir must be relative to the project root, got %q", cv.config.DocsDir)
	}
	if strings.HasPrefix(filepath.ToSlash(cv.config.DocsDir), "../") {
		return fmt.Errorf("docs_dir must stay inside the project root, got %q", cv.config.DocsDir)
	}
	if cv.config.CLI.Enabled && cv.config.CLI.Package == "" {
		return fmt.Errorf("cli.enabled requires cli.package to point at a main package")
	}
	return nil
}

func (cv *configValidator) validateDurations() error {
	for field, value := range map[string]string{
		"watch.debounce":      cv.config.Watch.Debounce,
		"watch.rebuild_every": cv.config.Watch.RebuildEvery,
		"link_check.timeout":  cv.config.LinkCheck.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", field, value, err)
		}
	}
	if d, _ := time.ParseDuration(cv.config.Watch.Debounce); d <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %q", cv.config.Watch.Debounce)
	}
	if d, _ := time.ParseDuration(cv.config.LinkCheck.Timeout); d <= 0 {
		return fmt.Errorf("link_check.timeout must be positive, got %q", cv.config.LinkCheck.Timeout)
	}
	return nil
}
