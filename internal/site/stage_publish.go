package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/pagemeta"
)

const manifestFileName = "manifest.json"

// pageManifest records which content pages this tool manages and the
// fingerprint each carried after the last build. Uninstall consults it to
// remove only pages that are still tool-owned.
type pageManifest struct {
	SchemaVersion int               `json:"schema_version"`
	Pages         map[string]string `json:"pages"`
}

// stagePublish writes the page manifest and promotes the staged render to
// public/.
func stagePublish(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if err := writeManifest(bs); err != nil {
		return warnErr(StagePublish, err)
	}

	if g.stagingDir == "" {
		slog.Debug("no staged output to publish")
		return nil
	}
	if err := g.finalizeStaging(); err != nil {
		return fatalErr(StagePublish, err)
	}
	slog.Debug("published site", logfields.Path(g.PublicDir()))
	return nil
}

func writeManifest(bs *BuildState) error {
	m := pageManifest{SchemaVersion: 1, Pages: bs.Manifest}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal page manifest: %w", err)
	}
	path := filepath.Join(bs.Generator.stateDir(), manifestFileName)
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write page manifest: %w", err)
	}
	return nil
}

// prunePages removes managed pages recorded in the previous manifest that
// this run no longer generated. Only pages under scope (a slash-separated
// content prefix, "" for all) are considered. A page the user edited stays
// on disk and simply stops being managed.
func prunePages(bs *BuildState, stage StageName, old map[string]string, scope string) {
	g := bs.Generator
	var removedDirs []string
	for rel := range old {
		if scope != "" && !strings.HasPrefix(rel, scope) {
			continue
		}
		if _, ok := bs.Manifest[rel]; ok {
			continue
		}
		path := filepath.Join(g.contentDir(), filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			bs.Report.Warn(stage, fmt.Errorf("check orphaned page %s: %w", rel, err))
			continue
		}
		pristine, perr := pagemeta.Pristine(data)
		if perr != nil || !pristine {
			bs.Report.Warn(stage, fmt.Errorf("page %s is no longer generated but was edited by hand, keeping it", rel))
			continue
		}
		if err := os.Remove(path); err != nil {
			bs.Report.Warn(stage, fmt.Errorf("remove orphaned page %s: %w", rel, err))
			continue
		}
		slog.Debug("removed orphaned page", logfields.Path(rel))
		removedDirs = append(removedDirs, filepath.Dir(path))
	}

	for _, dir := range removedDirs {
		for strings.HasPrefix(dir, g.contentDir()+string(filepath.Separator)) {
			if os.Remove(dir) != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}

// LoadManifest reads the page manifest from a docs workspace state dir.
// Callers get an empty manifest when none exists yet.
func LoadManifest(stateDir string) (map[string]string, error) {
	data, err := readStateFile(filepath.Join(stateDir, manifestFileName))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return map[string]string{}, nil
	}
	var m pageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse page manifest: %w", err)
	}
	if m.Pages == nil {
		m.Pages = map[string]string{}
	}
	return m.Pages, nil
}

// readStateFile reads a state file, mapping absence to nil data.
func readStateFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
