package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	configContent := `module: example.com/widget
package: .
docs_dir: docs
site:
  title: Widget
  description: Widgets for everyone
  base_url: https://example.com/widget
  scheme: flatly
discovery:
  method: manifest
  include:
    - Client
    - Dial
  exclude:
    - Deprecated
reference:
  large_type_threshold: 3
  families:
    http-client: HTTP Client
    codecs: ""
source_links:
  enabled: true
  placement: sidebar
github:
  style: icon
sidebar_filter:
  enabled: false
  min_items: 10
dark_mode: false
cli:
  enabled: true
  package: ./cmd/widget
guide:
  dir: docs/guide
authors:
  - name: Jane Maintainer
    role: Maintainer
    github: janem
links:
  Report a bug: https://example.com/issues
watch:
  debounce: 250ms
  rebuild_every: 5m
preview:
  addr: ":7070"
  live_reload: false
history:
  enabled: false
link_check:
  timeout: 3s
  ignore:
    - localhost
  nats_url: nats://localhost:4222
`

	config, err := Load(writeConfig(t, configContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if config.Module != "example.com/widget" {
		t.Errorf("Module = %v, want example.com/widget", config.Module)
	}
	if config.Site.Title != "Widget" {
		t.Errorf("Site.Title = %v, want Widget", config.Site.Title)
	}
	if config.Discovery.Method != DiscoveryManifest {
		t.Errorf("Discovery.Method = %v, want manifest", config.Discovery.Method)
	}
	if len(config.Discovery.Include) != 2 || config.Discovery.Include[0] != "Client" {
		t.Errorf("Discovery.Include = %v, want [Client Dial]", config.Discovery.Include)
	}
	if config.Reference.LargeTypeThreshold != 3 {
		t.Errorf("LargeTypeThreshold = %v, want 3", config.Reference.LargeTypeThreshold)
	}
	if got := config.Reference.Families["http-client"]; got != "HTTP Client" {
		t.Errorf("Families[http-client] = %q, want HTTP Client", got)
	}
	if config.SourceLinks.Placement != PlacementSidebar {
		t.Errorf("SourceLinks.Placement = %v, want sidebar", config.SourceLinks.Placement)
	}
	if config.GitHub.Style != GitHubIcon {
		t.Errorf("GitHub.Style = %v, want icon", config.GitHub.Style)
	}
	if config.SidebarFilterEnabled() {
		t.Error("SidebarFilterEnabled() = true, want false")
	}
	if config.SidebarFilter.MinItems != 10 {
		t.Errorf("SidebarFilter.MinItems = %v, want 10", config.SidebarFilter.MinItems)
	}
	if config.DarkModeEnabled() {
		t.Error("DarkModeEnabled() = true, want false")
	}
	if !config.CLI.Enabled || config.CLI.Package != "./cmd/widget" {
		t.Errorf("CLI = %+v, want enabled with ./cmd/widget", config.CLI)
	}
	if len(config.Authors) != 1 || config.Authors[0].GitHub != "janem" {
		t.Errorf("Authors = %+v, want one author with github janem", config.Authors)
	}
	if config.DebounceDuration() != 250*time.Millisecond {
		t.Errorf("DebounceDuration = %v, want 250ms", config.DebounceDuration())
	}
	if config.RebuildEveryDuration() != 5*time.Minute {
		t.Errorf("RebuildEveryDuration = %v, want 5m", config.RebuildEveryDuration())
	}
	if config.LiveReloadEnabled() {
		t.Error("LiveReloadEnabled() = true, want false")
	}
	if config.HistoryEnabled() {
		t.Error("HistoryEnabled() = true, want false")
	}
	if config.LinkCheck.NATSURL != "nats://localhost:4222" {
		t.Errorf("LinkCheck.NATSURL = %v", config.LinkCheck.NATSURL)
	}
}

func TestConfigDefaults(t *testing.T) {
	config, err := Load(writeConfig(t, "site:\n  title: Minimal\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if config.Package != "." {
		t.Errorf("Default package = %v, want .", config.Package)
	}
	if config.DocsDir != DefaultDocsDir {
		t.Errorf("Default docs_dir = %v, want %v", config.DocsDir, DefaultDocsDir)
	}
	if config.Site.Scheme != DefaultScheme {
		t.Errorf("Default scheme = %v, want %v", config.Site.Scheme, DefaultScheme)
	}
	if config.Discovery.Method != DiscoveryExported {
		t.Errorf("Default discovery method = %v, want exported", config.Discovery.Method)
	}
	if config.Reference.LargeTypeThreshold != DefaultLargeTypeThreshold {
		t.Errorf("Default threshold = %v, want %v",
			config.Reference.LargeTypeThreshold, DefaultLargeTypeThreshold)
	}
	if !config.DarkModeEnabled() || !config.SourceLinksEnabled() || !config.SidebarFilterEnabled() {
		t.Error("Tri-state toggles should default to enabled")
	}
	if !config.HistoryEnabled() {
		t.Error("History should default to enabled")
	}
	if config.History.Path != DefaultHistoryPath {
		t.Errorf("Default history path = %v, want %v", config.History.Path, DefaultHistoryPath)
	}
	if config.DebounceDuration() != 400*time.Millisecond {
		t.Errorf("Default debounce = %v, want 400ms", config.DebounceDuration())
	}
	if config.RebuildEveryDuration() != 0 {
		t.Errorf("Default rebuild_every = %v, want 0", config.RebuildEveryDuration())
	}
	if config.LinkCheck.NATSBucket != DefaultNATSBucket {
		t.Errorf("Default NATS bucket = %v, want %v", config.LinkCheck.NATSBucket, DefaultNATSBucket)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("REFDOCS_TEST_BASE_URL", "https://docs.internal.example")

	config, err := Load(writeConfig(t, "site:\n  base_url: ${REFDOCS_TEST_BASE_URL}\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if config.Site.BaseURL != "https://docs.internal.example" {
		t.Errorf("BaseURL = %v, want expanded env value", config.Site.BaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Load() error = %v, want not-found error", err)
	}
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"bad discovery method", "discovery:\n  method: everything\n", "discovery.method"},
		{"manifest without include", "discovery:\n  method: manifest\n", "discovery.include"},
		{"negative threshold", "reference:\n  large_type_threshold: -1\n", "large_type_threshold"},
		{"bad placement", "source_links:\n  placement: everywhere\n", "placement"},
		{"bad github style", "github:\n  style: banner\n", "github.style"},
		{"absolute docs dir", "docs_dir: /srv/docs\n", "docs_dir"},
		{"escaping docs dir", "docs_dir: ../elsewhere\n", "docs_dir"},
		{"cli without package", "cli:\n  enabled: true\n", "cli.package"},
		{"bad debounce", "watch:\n  debounce: soon\n", "watch.debounce"},
		{"zero timeout", "link_check:\n  timeout: 0s\n", "link_check.timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("Load() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	if err := Init(path, false); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	// Refuses to clobber without force.
	if err := Init(path, false); err == nil {
		t.Fatal("Init() should refuse to overwrite without force")
	}
	if err := Init(path, true); err != nil {
		t.Fatalf("Init(force) error: %v", err)
	}

	// The example file must load and validate cleanly.
	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load(example) error: %v", err)
	}
	if config.Discovery.Method != DiscoveryExported {
		t.Errorf("Example discovery method = %v, want exported", config.Discovery.Method)
	}
	if config.Site.Scheme != DefaultScheme {
		t.Errorf("Example scheme = %v, want %v", config.Site.Scheme, DefaultScheme)
	}
}
