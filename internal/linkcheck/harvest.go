// Package linkcheck finds http(s) URLs in a module's sources and docs and
// verifies them against the live web.
package linkcheck

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// urlPattern matches http(s) URLs up to the first character that cannot be
// part of one in prose or source text.
var urlPattern = regexp.MustCompile("(?i)https?://[^\\s<>\"')\\]}`\\\\]+")

// noCheckPattern matches URLs annotated with the opt-out marker, as in
// "http://example.com (no-link-check)".
var noCheckPattern = regexp.MustCompile("(?i)(https?://[^\\s<>\"')\\]}`\\\\]+?)[ \t]*\\(no-link-check\\)")

// ScanOptions selects which trees to harvest URLs from.
type ScanOptions struct {
	ProjectRoot string
	PackageDir  string // Go sources; "" skips the source scan
	DocsDir     string // docs markdown; "" skips the docs scan
	DocsOnly    bool   // skip Go sources even when PackageDir is set
}

// Harvest is every URL found, with the files that reference each one.
type Harvest struct {
	// URLs maps each unique URL to the project-relative files that
	// reference it, sorted.
	URLs map[string][]string

	// ByFile maps each project-relative file to the URLs found in it, in
	// order of first appearance.
	ByFile map[string][]string
}

// Sorted returns the unique URLs in stable order.
func (h *Harvest) Sorted() []string {
	urls := make([]string, 0, len(h.URLs))
	for u := range h.URLs {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Scan harvests URLs from Go sources under PackageDir, markdown under
// DocsDir, and the project README. Generated site output inside the docs
// dir is not scanned.
func Scan(opts ScanOptions) (*Harvest, error) {
	var files []string

	if !opts.DocsOnly && opts.PackageDir != "" {
		goFiles, err := collectFiles(opts.PackageDir, ".go", nil)
		if err != nil {
			return nil, err
		}
		files = append(files, goFiles...)
	}
	if opts.DocsDir != "" {
		mdFiles, err := collectFiles(opts.DocsDir, ".md", generatedDocsDirs)
		if err != nil {
			return nil, err
		}
		files = append(files, mdFiles...)
	}
	if opts.ProjectRoot != "" {
		readme := filepath.Join(opts.ProjectRoot, "README.md")
		if _, err := os.Stat(readme); err == nil {
			files = append(files, readme)
		}
	}

	h := &Harvest{URLs: map[string][]string{}, ByFile: map[string][]string{}}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		urls := harvestText(string(content))
		if len(urls) == 0 {
			continue
		}
		rel := relPath(opts.ProjectRoot, file)
		h.ByFile[rel] = urls
		for _, u := range urls {
			h.URLs[u] = append(h.URLs[u], rel)
		}
	}

	for u, refs := range h.URLs {
		sort.Strings(refs)
		h.URLs[u] = uniqueSorted(refs)
	}
	return h, nil
}

// generatedDocsDirs are docs-dir subtrees a build writes; their URLs all
// originate from the scanned sources anyway.
var generatedDocsDirs = map[string]bool{
	"public":      true,
	"public.prev": true,
	"content":     true,
	"static":      true,
	"layouts":     true,
	"resources":   true,
}

func collectFiles(root, ext string, skipDirs map[string]bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || name == "vendor" ||
				skipDirs[name] || strings.HasPrefix(name, "public.staging-") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ext) {
			files = append(files, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}

// harvestText extracts cleaned URLs from one file's content, deduplicated
// in order of first appearance.
func harvestText(content string) []string {
	optedOut := map[string]bool{}
	for _, m := range noCheckPattern.FindAllStringSubmatch(content, -1) {
		optedOut[m[1]] = true
	}

	var urls []string
	seen := map[string]bool{}
	for _, raw := range urlPattern.FindAllString(content, -1) {
		u, ok := cleanURL(raw)
		if !ok || optedOut[u] || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// cleanURL strips trailing prose punctuation and unbalanced closing
// parentheses, and drops candidates that are not checkable.
func cleanURL(raw string) (string, bool) {
	u := strings.TrimRight(raw, ".,;:!?")
	for strings.HasSuffix(u, ")") && strings.Count(u, ")") > strings.Count(u, "(") {
		u = u[:len(u)-1]
	}
	if u == "" {
		return "", false
	}
	// Template placeholders make the URL unresolvable as written.
	if strings.Contains(u, "{") {
		return "", false
	}
	// An adjacent opt-out marker gets swallowed by the URL pattern.
	if strings.Contains(u, "(no-link-check") {
		return "", false
	}
	return u, true
}

func relPath(root, file string) string {
	if root == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func uniqueSorted(sorted []string) []string {
	out := sorted[:0]
	var prev string
	for i, s := range sorted {
		if i == 0 || s != prev {
			out = append(out, s)
		}
		prev = s
	}
	return out
}
