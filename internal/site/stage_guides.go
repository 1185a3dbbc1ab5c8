package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/refdocs/internal/frontmatter"
	"git.home.luguber.info/inful/refdocs/internal/markdown"
)

// stageGuides copies the discovered user-guide pages into content/guide/
// and builds the section index. Page titles come from frontmatter, the
// first heading, or the filename.
func stageGuides(ctx context.Context, bs *BuildState) error {
	if bs.GuideDir == "" {
		slog.Debug("no guide directory discovered")
		return nil
	}
	entries, err := os.ReadDir(bs.GuideDir)
	if err != nil {
		return warnErr(StageGuides, fmt.Errorf("read guide dir: %w", err))
	}

	wroteIndex := false
	weight := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".md") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return canceledErr(StageGuides, err)
		}

		src := filepath.Join(bs.GuideDir, name)
		if name == "index.md" || name == "_index.md" {
			wroteIndex = true
			if err := copyGuidePage(bs, src, "_index.md", 0); err != nil {
				return fatalErr(StageGuides, err)
			}
			continue
		}
		weight++
		if err := copyGuidePage(bs, src, strings.ToLower(name), weight); err != nil {
			return fatalErr(StageGuides, err)
		}
	}

	if !wroteIndex {
		doc := newPage("")
		doc.Set("title", "Guide")
		if err := bs.writeManaged(StageGuides, filepath.Join("guide", "_index.md"), doc); err != nil {
			return fatalErr(StageGuides, err)
		}
	}
	return nil
}

func copyGuidePage(bs *BuildState, src, target string, weight int) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		bs.Report.Warn(StageGuides, fmt.Errorf("guide page %s: %w", filepath.Base(src), err))
		return nil
	}

	title := doc.String("title")
	if title == "" {
		if t, ok := markdown.ExtractTitle(doc.Body); ok {
			title = t
		} else {
			title = guideTitle(filepath.Base(src))
		}
	}
	doc.Set("title", title)
	doc.Body = markdown.StripLeadingH1(doc.Body)
	doc.Present = true
	if weight > 0 {
		doc.Set("weight", weight)
	}

	warnDanglingLinks(bs, src, doc.Body)
	return bs.writeManaged(StageGuides, filepath.Join("guide", target), doc)
}

// warnDanglingLinks reports relative links whose target does not exist
// next to the source page. Absolute site paths and anchors resolve only
// after rendering and are left to the link checker.
func warnDanglingLinks(bs *BuildState, src string, body []byte) {
	for _, link := range markdown.ExtractLinks(body) {
		dest := link.Destination
		if dest == "" || link.IsExternal() {
			continue
		}
		if strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
			continue
		}
		dest, _, _ = strings.Cut(dest, "#")
		dest, _, _ = strings.Cut(dest, "?")
		if dest == "" {
			continue
		}
		target := filepath.Join(filepath.Dir(src), filepath.FromSlash(dest))
		if _, err := os.Stat(target); err != nil {
			bs.Report.Warn(StageGuides, fmt.Errorf("guide page %s links to missing %s", filepath.Base(src), dest))
		}
	}
}

var guideTitleCaser = cases.Title(language.English)

// guideTitle derives a page title from a kebab or snake case filename.
func guideTitle(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	return guideTitleCaser.String(strings.Join(words, " "))
}
