package site

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// sourceURL resolves a parsed source position to a forge blob URL. Empty
// when source links are disabled, no repository was detected, or the
// remote is not a supported forge.
func (bs *BuildState) sourceURL(file string, line int) string {
	if file == "" || bs.Git == nil || !bs.Generator.cfg.SourceLinksEnabled() {
		return ""
	}
	return bs.Git.BlobURL(bs.repoRelPath(file), line)
}

// repoRelPath maps a parser file path to a path relative to the repository
// worktree root. Modules nested inside a larger repository link to their
// true in-repo location this way.
func (bs *BuildState) repoRelPath(file string) string {
	base := bs.Generator.projectRoot
	if bs.Git != nil && bs.Git.Root != "" {
		base = bs.Git.Root
	}
	rel, err := filepath.Rel(base, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

// stageSourceLinks writes static/source-links.json mapping documented
// object names to forge URLs at the detected ref.
func stageSourceLinks(ctx context.Context, bs *BuildState) error {
	if !bs.Generator.cfg.SourceLinksEnabled() {
		slog.Debug("source links disabled")
		return nil
	}
	if bs.Git == nil || !bs.Git.IsGitHub() {
		slog.Debug("no forge coordinates, skipping source-links manifest")
		return nil
	}
	if bs.API == nil || bs.API.Empty() {
		return nil
	}

	links := make(map[string]string)
	for _, obj := range bs.API.Objects() {
		if url := bs.sourceURL(obj.File, obj.Line); url != "" {
			links[obj.Name] = url
		}
		for _, m := range obj.Constructors {
			if url := bs.sourceURL(m.File, m.Line); url != "" {
				links[m.Name] = url
			}
		}
		for _, m := range obj.Methods {
			if url := bs.sourceURL(m.File, m.Line); url != "" {
				links[obj.Name+"."+m.Name] = url
			}
		}
	}
	if len(links) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fatalErr(StageSourceLinks, err)
	}
	path := filepath.Join(bs.Generator.staticDir(), "source-links.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fatalErr(StageSourceLinks, fmt.Errorf("write source-links manifest: %w", err))
	}
	slog.Debug("wrote source-links manifest", logfields.Path(path), slog.Int("links", len(links)))
	return nil
}
