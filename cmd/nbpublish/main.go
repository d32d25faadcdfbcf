package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/nbpublish/cmd/nbpublish/commands"
	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("nbpublish"),
		kong.Description("Publish workshop notebooks and markdown pages as a static site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
