package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/apidoc"
	"git.home.luguber.info/inful/refdocs/internal/config"
)

// stageReference writes one page per documented object plus the section
// index pages under content/reference/.
func stageReference(ctx context.Context, bs *BuildState) error {
	hasAPI := bs.API != nil && !bs.API.Empty()
	if !hasAPI && bs.CLI == nil {
		slog.Debug("no API model and no CLI tree, skipping reference section")
		return nil
	}

	if err := writeReferenceIndex(bs); err != nil {
		return fatalErr(StageReference, err)
	}
	if !hasAPI {
		return nil
	}

	links := referenceLinks(bs.API)
	for i, sec := range bs.API.Sections {
		if len(sec.Objects) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return canceledErr(StageReference, err)
		}
		if err := writeSectionIndex(bs, sec, i+1); err != nil {
			return fatalErr(StageReference, err)
		}
		for j, obj := range sec.Objects {
			if err := writeObjectPage(bs, sec, obj, j+1, links); err != nil {
				return fatalErr(StageReference, err)
			}
		}
	}
	return nil
}

// referenceLinks maps every documented object name to its page URL, for
// see-also resolution and the llms index.
func referenceLinks(api *apidoc.Package) map[string]string {
	links := make(map[string]string)
	for _, sec := range api.Sections {
		for _, obj := range sec.Objects {
			links[obj.Name] = objectURL(sec.Key, obj.Name)
		}
	}
	return links
}

func objectURL(sectionKey, name string) string {
	return "/reference/" + sectionKey + "/" + strings.ToLower(name) + "/"
}

func objectPagePath(sectionKey, name string) string {
	return filepath.Join("reference", sectionKey, strings.ToLower(name)+".md")
}

// writeReferenceIndex writes reference/_index.md with a summary table per
// section. The table is plain markdown so it survives into llms.txt-style
// text extraction as well as HTML rendering.
func writeReferenceIndex(bs *BuildState) error {
	var b strings.Builder
	if bs.API != nil {
		if syn := strings.TrimSpace(bs.API.Synopsis); syn != "" {
			b.WriteString(syn + "\n\n")
		}
		for _, sec := range bs.API.Sections {
			if len(sec.Objects) == 0 {
				continue
			}
			b.WriteString("## " + sec.Title + "\n\n")
			b.WriteString("| Name | Description |\n")
			b.WriteString("| --- | --- |\n")
			for _, obj := range sec.Objects {
				b.WriteString(fmt.Sprintf("| [%s](%s) | %s |\n",
					obj.Name, objectURL(sec.Key, obj.Name), tableCell(obj.Synopsis)))
			}
			b.WriteString("\n")
		}
	}
	if bs.CLI != nil {
		b.WriteString("## Command line\n\n")
		b.WriteString(fmt.Sprintf("Usage of the [%s command](/reference/cli/).\n", bs.CLI.Root.Name))
	}

	doc := newPage(b.String())
	doc.Set("title", "Reference")
	return bs.writeManaged(StageReference, filepath.Join("reference", "_index.md"), doc)
}

func writeSectionIndex(bs *BuildState, sec *apidoc.Section, weight int) error {
	doc := newPage("")
	doc.Set("title", sec.Title)
	doc.Set("weight", weight)
	return bs.writeManaged(StageReference, filepath.Join("reference", sec.Key, "_index.md"), doc)
}

func writeObjectPage(bs *BuildState, sec *apidoc.Section, obj *apidoc.Object, weight int, links map[string]string) error {
	doc := newPage(objectBody(bs, obj, links))
	doc.Set("title", obj.Name)
	doc.Set("kind", string(obj.Kind))
	doc.Set("weight", weight)
	if obj.Synopsis != "" {
		doc.Set("synopsis", obj.Synopsis)
	}
	if sidebarSourceLinks(bs.Generator.cfg) {
		if url := bs.sourceURL(obj.File, obj.Line); url != "" {
			doc.Set("sourceUrl", url)
		}
	}
	return bs.writeManaged(StageReference, objectPagePath(sec.Key, obj.Name), doc)
}

// objectBody renders the markdown body of one object page: declaration,
// doc comment, attached members and values, examples and see-also links.
func objectBody(bs *BuildState, obj *apidoc.Object, links map[string]string) string {
	var b strings.Builder

	if obj.Declaration != "" {
		writeCodeFence(&b, "go", obj.Declaration)
	}
	if url := bodySourceLink(bs, obj.File, obj.Line); url != "" {
		b.WriteString(url + "\n\n")
	}
	if d := strings.TrimSpace(obj.Doc); d != "" {
		b.WriteString(d + "\n\n")
	}

	if len(obj.Constructors) > 0 {
		b.WriteString("## Constructors\n\n")
		for _, m := range obj.Constructors {
			writeMember(&b, bs, m)
		}
	}

	if obj.SplitMethods {
		b.WriteString("## Methods\n\n")
		for _, m := range obj.Methods {
			url := objectURL(strings.ToLower(obj.Name)+"-methods", obj.Name+"."+m.Name)
			b.WriteString(fmt.Sprintf("- [%s](%s)", m.Name, url))
			if m.Synopsis != "" {
				b.WriteString(": " + m.Synopsis)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else if len(obj.Methods) > 0 {
		b.WriteString("## Methods\n\n")
		for _, m := range obj.Methods {
			writeMember(&b, bs, m)
		}
	}

	writeValues(&b, obj.Values)
	writeExamples(&b, obj)
	writeSeeAlso(&b, obj.SeeAlso, links)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeMember(b *strings.Builder, bs *BuildState, m *apidoc.Member) {
	b.WriteString("### " + m.Name + "\n\n")
	if m.Declaration != "" {
		writeCodeFence(b, "go", m.Declaration)
	}
	if url := bodySourceLink(bs, m.File, m.Line); url != "" {
		b.WriteString(url + "\n\n")
	}
	if d := strings.TrimSpace(m.Doc); d != "" {
		b.WriteString(d + "\n\n")
	}
}

// writeValues renders const/var groups go/doc associated with a type,
// split by declaration keyword.
func writeValues(b *strings.Builder, values []*apidoc.Value) {
	writeGroup := func(heading, keyword string) {
		wrote := false
		for _, v := range values {
			if !strings.HasPrefix(v.Declaration, keyword) {
				continue
			}
			if !wrote {
				b.WriteString("## " + heading + "\n\n")
				wrote = true
			}
			if d := strings.TrimSpace(v.Doc); d != "" {
				b.WriteString(d + "\n\n")
			}
			writeCodeFence(b, "go", v.Declaration)
		}
	}
	writeGroup("Constants", "const")
	writeGroup("Variables", "var")
}

func writeExamples(b *strings.Builder, obj *apidoc.Object) {
	if len(obj.Examples) == 0 {
		return
	}
	b.WriteString("## Examples\n\n")
	for _, ex := range obj.Examples {
		b.WriteString("### " + exampleHeading(obj.Name, ex) + "\n\n")
		writeCodeFence(b, "go", ex.Code)
		if ex.Output != "" {
			b.WriteString("Output:\n\n")
			writeCodeFence(b, "text", ex.Output)
		}
	}
}

// exampleHeading derives a heading from the Example* function name: the
// method part when present, the suffix in parentheses.
func exampleHeading(objName string, ex *apidoc.Example) string {
	base := strings.ReplaceAll(objName, ".", "_")
	rest := strings.TrimPrefix(ex.Name, base)
	rest = strings.TrimPrefix(rest, "_")
	if ex.Suffix != "" {
		rest = strings.TrimSuffix(rest, ex.Suffix)
		rest = strings.TrimSuffix(rest, "_")
	}

	h := "Example"
	if rest != "" {
		h += ": " + rest
	}
	if ex.Suffix != "" {
		h += " (" + ex.Suffix + ")"
	}
	return h
}

func writeSeeAlso(b *strings.Builder, names []string, links map[string]string) {
	if len(names) == 0 {
		return
	}
	b.WriteString("## See also\n\n")
	for _, name := range names {
		if url, ok := links[name]; ok {
			b.WriteString(fmt.Sprintf("- [%s](%s)\n", name, url))
		} else {
			b.WriteString(fmt.Sprintf("- `%s`\n", name))
		}
	}
	b.WriteString("\n")
}

func writeCodeFence(b *strings.Builder, lang, code string) {
	b.WriteString("```" + lang + "\n")
	b.WriteString(strings.TrimRight(code, "\n"))
	b.WriteString("\n```\n\n")
}

// tableCell escapes a synopsis for use inside a markdown table row.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}

func sidebarSourceLinks(cfg *config.Config) bool {
	p := cfg.SourceLinks.Placement
	return p == config.PlacementSidebar || p == config.PlacementBoth
}

// bodySourceLink renders an inline view-source link when the placement
// asks for one.
func bodySourceLink(bs *BuildState, file string, line int) string {
	p := bs.Generator.cfg.SourceLinks.Placement
	if p != config.PlacementBody && p != config.PlacementBoth {
		return ""
	}
	url := bs.sourceURL(file, line)
	if url == "" {
		return ""
	}
	return fmt.Sprintf("[View source](%s)", url)
}
