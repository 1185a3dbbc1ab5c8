package theme

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

//go:embed assets
var assetFS embed.FS

// AssetNames lists the shipped asset file names.
func AssetNames() []string {
	entries, err := assetFS.ReadDir("assets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// InstallAssets writes every shipped asset into dir, overwriting previous
// versions.
func InstallAssets(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range AssetNames() {
		data, err := assetFS.ReadFile("assets/" + name)
		if err != nil {
			return fmt.Errorf("read embedded asset %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("install asset %s: %w", name, err)
		}
	}
	return nil
}

// ModifiedAssets lists shipped assets whose copy in dir no longer matches
// the embedded version. Missing files do not count as modified.
func ModifiedAssets(dir string) []string {
	var out []string
	for _, name := range AssetNames() {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		want, err := assetFS.ReadFile("assets/" + name)
		if err != nil {
			continue
		}
		if sha256.Sum256(data) != sha256.Sum256(want) {
			out = append(out, name)
		}
	}
	return out
}

// UninstallAssets removes shipped assets from dir. A file whose hash no
// longer matches the shipped version was changed by the user and is kept.
func UninstallAssets(dir string) (removed, kept []string, err error) {
	for _, name := range AssetNames() {
		path := filepath.Join(dir, name)
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			continue
		}
		want, rerr := assetFS.ReadFile("assets/" + name)
		if rerr != nil {
			continue
		}
		if sha256.Sum256(data) != sha256.Sum256(want) {
			kept = append(kept, name)
			continue
		}
		if rerr := os.Remove(path); rerr != nil {
			return removed, kept, rerr
		}
		removed = append(removed, name)
	}
	return removed, kept, nil
}
