package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/refdocs/cmd/refdocs/commands"
	"git.home.luguber.info/inful/refdocs/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("refdocs"),
		kong.Description("Generate and serve a documentation site for a Go module."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}, &cli))
}
