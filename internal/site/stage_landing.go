package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/config"
	"git.home.luguber.info/inful/refdocs/internal/frontmatter"
	"git.home.luguber.info/inful/refdocs/internal/markdown"
)

// stageLanding builds the site landing page from the narrative source:
// <docs>/index.md when present, else the project README. The page title
// moves into frontmatter, remaining headings shift down one level, and a
// metadata margin is prepended. Companion pages are generated for LICENSE,
// CONTRIBUTING and CODE_OF_CONDUCT files at the project root.
func stageLanding(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	source, origin := landingSource(g)
	doc := &frontmatter.Document{Fields: map[string]any{}}
	if source != nil {
		parsed, err := frontmatter.Parse(source)
		if err != nil {
			return fatalErr(StageLanding, fmt.Errorf("parse %s: %w", origin, err))
		}
		doc = parsed
	} else {
		bs.Report.Warn(StageLanding, fmt.Errorf("no landing source (docs index.md or README.md); generating a minimal landing page"))
	}

	title := doc.String("title")
	if title == "" {
		if t, ok := markdown.ExtractTitle(doc.Body); ok {
			title = t
		}
	}
	if title == "" && bs.Module != nil {
		title = bs.Module.Name()
	}

	body := markdown.StripLeadingH1(doc.Body)
	body = markdown.ShiftHeadings(body, 1)

	companions := detectCompanions(g.projectRoot)
	margin := landingMargin(bs, companions)

	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	doc.Set("title", title)
	var page []byte
	page = append(page, margin...)
	page = append(page, body...)
	doc.Body = page
	doc.Present = true

	if err := bs.writeManaged(StageLanding, "_index.md", doc); err != nil {
		return fatalErr(StageLanding, err)
	}

	for _, c := range companions {
		if err := writeCompanion(bs, c); err != nil {
			bs.Report.Warn(StageLanding, err)
		}
	}
	return nil
}

// landingSource returns the landing markdown and a label for error
// messages; docs/index.md wins over README.md.
func landingSource(g *Generator) ([]byte, string) {
	docsIndex := filepath.Join(g.docsDir, "index.md")
	if data, err := os.ReadFile(docsIndex); err == nil {
		return data, docsIndex
	}
	readme := filepath.Join(g.projectRoot, "README.md")
	if data, err := os.ReadFile(readme); err == nil {
		return data, readme
	}
	return nil, ""
}

// companion is a project meta file that gets its own page.
type companion struct {
	Path  string // absolute source path
	Slug  string // content page slug
	Title string
	Plain bool // plain text, not markdown
}

func detectCompanions(projectRoot string) []companion {
	var found []companion
	for _, name := range []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING"} {
		path := filepath.Join(projectRoot, name)
		if fileExists(path) {
			found = append(found, companion{
				Path:  path,
				Slug:  "license",
				Title: "License",
				Plain: !strings.HasSuffix(name, ".md"),
			})
			break
		}
	}
	if path := filepath.Join(projectRoot, "CONTRIBUTING.md"); fileExists(path) {
		found = append(found, companion{Path: path, Slug: "contributing", Title: "Contributing"})
	}
	if path := filepath.Join(projectRoot, "CODE_OF_CONDUCT.md"); fileExists(path) {
		found = append(found, companion{Path: path, Slug: "code-of-conduct", Title: "Code of Conduct"})
	}
	return found
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func writeCompanion(bs *BuildState, c companion) error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.Path, err)
	}

	doc := &frontmatter.Document{Fields: map[string]any{}, Present: true}
	doc.Set("title", c.Title)
	if c.Plain {
		var b strings.Builder
		b.WriteString("```text\n")
		b.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
		doc.Body = []byte(b.String())
	} else {
		parsed, err := frontmatter.Parse(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", c.Path, err)
		}
		body := markdown.StripLeadingH1(parsed.Body)
		doc.Body = markdown.ShiftHeadings(body, 1)
	}

	return bs.writeManaged(StageLanding, c.Slug+".md", doc)
}

// landingMargin renders the metadata block shown beside the landing copy.
func landingMargin(bs *BuildState, companions []companion) []byte {
	var b strings.Builder
	b.WriteString("<aside class=\"refdocs-margin\">\n<dl>\n")

	if bs.Module != nil {
		fmt.Fprintf(&b, "<dt>Module</dt><dd><code>%s</code></dd>\n", bs.Module.ModulePath)
		if bs.Module.GoVersion != "" {
			fmt.Fprintf(&b, "<dt>Go</dt><dd>%s</dd>\n", bs.Module.GoVersion)
		}
	}
	if bs.Git.IsGitHub() {
		fmt.Fprintf(&b, "<dt>Repository</dt><dd><a href=\"%s\">%s/%s</a></dd>\n",
			bs.Git.RepoURL(), bs.Git.Owner, bs.Git.Repo)
	}
	for _, c := range companions {
		if c.Slug == "license" {
			name := licenseName(c.Path)
			fmt.Fprintf(&b, "<dt>License</dt><dd><a href=\"/license/\">%s</a></dd>\n", name)
		}
	}
	if authors := bs.Generator.cfg.Authors; len(authors) > 0 {
		b.WriteString("<dt>Authors</dt><dd>")
		for i, a := range authors {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(authorLink(a))
		}
		b.WriteString("</dd>\n")
	}
	for _, label := range sortedKeys(bs.Generator.cfg.Links) {
		url := bs.Generator.cfg.Links[label]
		fmt.Fprintf(&b, "<dt>%s</dt><dd><a href=\"%s\">%s</a></dd>\n", label, url, url)
	}

	b.WriteString("</dl>\n</aside>\n\n")
	return []byte(b.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func authorLink(a config.Author) string {
	label := a.Name
	if a.Role != "" {
		label = fmt.Sprintf("%s (%s)", a.Name, a.Role)
	}
	switch {
	case a.GitHub != "":
		return fmt.Sprintf("<a href=\"https://github.com/%s\">%s</a>", a.GitHub, label)
	case a.Homepage != "":
		return fmt.Sprintf("<a href=\"%s\">%s</a>", a.Homepage, label)
	case a.Email != "":
		return fmt.Sprintf("<a href=\"mailto:%s\">%s</a>", a.Email, label)
	default:
		return label
	}
}

// licenseName inspects the first lines of a license file for well-known
// markers; unknown licenses display as plain "License".
func licenseName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "License"
	}
	head := strings.ToLower(string(data))
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case strings.Contains(head, "mit license"):
		return "MIT"
	case strings.Contains(head, "apache license"):
		return "Apache-2.0"
	case strings.Contains(head, "mozilla public license"):
		return "MPL-2.0"
	case strings.Contains(head, "gnu general public license"):
		return "GPL"
	case strings.Contains(head, "bsd"):
		return "BSD"
	default:
		return "License"
	}
}
