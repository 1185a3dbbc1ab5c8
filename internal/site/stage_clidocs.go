package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refdocs/internal/clidoc"
)

// stageCLIDocs writes one page per command from the CLI tree under
// content/reference/cli/. The reference-type switcher in the sidebar keys
// off this subtree's URL prefix.
func stageCLIDocs(ctx context.Context, bs *BuildState) error {
	if bs.CLI == nil {
		slog.Debug("no CLI tree, skipping command reference")
		return nil
	}

	var pages []cliPage
	bs.CLI.Root.Walk(func(path []string, cmd *clidoc.Command) {
		pages = append(pages, cliPage{path: append([]string(nil), path...), cmd: cmd})
	})

	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return canceledErr(StageCLIDocs, err)
		}
		if err := writeCommandPage(bs, p, i); err != nil {
			return fatalErr(StageCLIDocs, err)
		}
	}
	return nil
}

type cliPage struct {
	path []string
	cmd  *clidoc.Command
}

// slug is the page file name under reference/cli/, derived from the
// command path without the binary name. The root command is the section
// index.
func (p cliPage) slug() string {
	if len(p.path) <= 1 {
		return "_index"
	}
	return strings.Join(p.path[1:], "-")
}

func (p cliPage) title() string {
	if len(p.path) <= 1 {
		return p.path[0]
	}
	return strings.Join(p.path[1:], " ")
}

func (p cliPage) url() string {
	if len(p.path) <= 1 {
		return "/reference/cli/"
	}
	return "/reference/cli/" + p.slug() + "/"
}

func writeCommandPage(bs *BuildState, p cliPage, weight int) error {
	doc := newPage(commandBody(p))
	doc.Set("title", p.title())
	doc.Set("kind", "command")
	if len(p.path) <= 1 {
		// Section weight: the command reference sorts after the API
		// sections in the sidebar.
		doc.Set("weight", 99)
	} else {
		doc.Set("weight", weight+1)
	}
	if p.cmd.Synopsis != "" {
		doc.Set("synopsis", p.cmd.Synopsis)
	}
	return bs.writeManaged(StageCLIDocs, filepath.Join("reference", "cli", p.slug()+".md"), doc)
}

func commandBody(p cliPage) string {
	var b strings.Builder

	switch {
	case p.cmd.Description != "":
		b.WriteString(strings.TrimSpace(p.cmd.Description) + "\n\n")
	case p.cmd.Synopsis != "":
		b.WriteString(p.cmd.Synopsis + "\n\n")
	}

	b.WriteString("## Usage\n\n")
	writeCodeFence(&b, "text", usageLine(p))

	args, flags := splitFlags(p.cmd.Flags)
	if len(args) > 0 {
		b.WriteString("## Arguments\n\n")
		b.WriteString("| Argument | Type | Description |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, f := range args {
			b.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n", f.Name, tableCell(f.Type), tableCell(f.Help)))
		}
		b.WriteString("\n")
	}
	if len(flags) > 0 {
		b.WriteString("## Flags\n\n")
		b.WriteString("| Flag | Type | Default | Description |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, f := range flags {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				flagCell(f), tableCell(f.Type), defaultCell(f.Default), tableCell(f.Help)))
		}
		b.WriteString("\n")
	}

	if len(p.cmd.Children) > 0 {
		b.WriteString("## Commands\n\n")
		b.WriteString("| Command | Description |\n")
		b.WriteString("| --- | --- |\n")
		for _, child := range p.cmd.Children {
			childPage := cliPage{path: append(append([]string(nil), p.path...), child.Name), cmd: child}
			b.WriteString(fmt.Sprintf("| [%s](%s) | %s |\n", child.Name, childPage.url(), tableCell(child.Synopsis)))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func usageLine(p cliPage) string {
	parts := append([]string(nil), p.path...)
	args, flags := splitFlags(p.cmd.Flags)
	for _, a := range args {
		parts = append(parts, "<"+a.Name+">")
	}
	if len(flags) > 0 {
		parts = append(parts, "[flags]")
	}
	if len(p.cmd.Children) > 0 {
		parts = append(parts, "<command>")
	}
	return strings.Join(parts, " ")
}

// splitFlags separates positional arguments from option flags.
func splitFlags(all []clidoc.Flag) (args, flags []clidoc.Flag) {
	for _, f := range all {
		if f.Arg {
			args = append(args, f)
		} else {
			flags = append(flags, f)
		}
	}
	return args, flags
}

func flagCell(f clidoc.Flag) string {
	cell := "`--" + f.Name + "`"
	if f.Short != "" {
		cell += ", `-" + f.Short + "`"
	}
	return cell
}

func defaultCell(def string) string {
	if def == "" {
		return ""
	}
	return "`" + tableCell(def) + "`"
}
