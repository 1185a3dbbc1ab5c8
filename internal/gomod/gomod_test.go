package gomod

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()
	content := `module example.com/acme/widget

go 1.24

require (
	github.com/google/uuid v1.6.0
	gopkg.in/yaml.v3 v3.0.1
)

require github.com/davecgh/go-spew v1.1.1 // indirect
`
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}

	info, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if info.ModulePath != "example.com/acme/widget" {
		t.Errorf("ModulePath = %v", info.ModulePath)
	}
	if info.GoVersion != "1.24" {
		t.Errorf("GoVersion = %v, want 1.24", info.GoVersion)
	}
	// Indirect requirements stay out of the dep list.
	if len(info.Deps) != 2 {
		t.Fatalf("Deps = %v, want 2 direct deps", info.Deps)
	}
	if info.Deps[0].Path != "github.com/google/uuid" || info.Deps[0].Version != "v1.6.0" {
		t.Errorf("Deps[0] = %+v", info.Deps[0])
	}
}

func TestReadMissingOrBroken(t *testing.T) {
	if _, err := Read(t.TempDir()); err == nil {
		t.Error("Read() on empty dir should fail")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.24\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	if _, err := Read(dir); err == nil {
		t.Error("Read() without module directive should fail")
	}
}

func TestName(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"example.com/acme/widget", "widget"},
		{"github.com/acme/widget/v2", "widget"},
		{"github.com/acme/widget/v12", "widget"},
		{"widget", "widget"},
		{"example.com/v1tools", "v1tools"}, // not a major-version element
	}
	for _, tc := range cases {
		info := &Info{ModulePath: tc.path}
		if got := info.Name(); got != tc.want {
			t.Errorf("Name(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
