package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/clidoc"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// stageLLMs writes static/llms.txt, a compact plain-text index of the
// documented surface for language-model consumption.
func stageLLMs(ctx context.Context, bs *BuildState) error {
	var b strings.Builder

	b.WriteString("# " + bs.Module.Name() + "\n\n")
	if desc := llmsDescription(bs); desc != "" {
		b.WriteString("> " + desc + "\n\n")
	}
	b.WriteString(fmt.Sprintf("Go module `%s`.\n\n", bs.Module.ModulePath))

	base := strings.TrimSuffix(bs.Generator.cfg.Site.BaseURL, "/")
	if bs.API != nil {
		for _, sec := range bs.API.Sections {
			if len(sec.Objects) == 0 {
				continue
			}
			b.WriteString("## " + sec.Title + "\n\n")
			for _, obj := range sec.Objects {
				b.WriteString(fmt.Sprintf("- [%s](%s)", obj.Name, base+objectURL(sec.Key, obj.Name)))
				if obj.Synopsis != "" {
					b.WriteString(": " + obj.Synopsis)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if bs.CLI != nil {
		b.WriteString("## Command line\n\n")
		bs.CLI.Root.Walk(func(path []string, cmd *clidoc.Command) {
			page := cliPage{path: path, cmd: cmd}
			b.WriteString(fmt.Sprintf("- [%s](%s)", strings.Join(path, " "), base+page.url()))
			if cmd.Synopsis != "" {
				b.WriteString(": " + cmd.Synopsis)
			}
			b.WriteString("\n")
		})
		b.WriteString("\n")
	}

	path := filepath.Join(bs.Generator.staticDir(), "llms.txt")
	out := strings.TrimRight(b.String(), "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fatalErr(StageLLMs, fmt.Errorf("write llms index: %w", err))
	}
	slog.Debug("wrote llms index", logfields.Path(path))
	return nil
}

func llmsDescription(bs *BuildState) string {
	if d := strings.TrimSpace(bs.Generator.cfg.Site.Description); d != "" {
		return d
	}
	if bs.API != nil {
		return strings.TrimSpace(bs.API.Synopsis)
	}
	return ""
}
