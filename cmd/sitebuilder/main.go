// Command sitebuilder builds a static site from a table of contents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/cmd/sitebuilder/commands"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli commands.CLI
	g := &commands.Global{Ctx: ctx, Out: os.Stdout, Err: os.Stderr}
	parser, err := kong.New(&cli,
		kong.Name("sitebuilder"),
		kong.Description("Build a static site from a table of contents."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
	)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = kctx.Run(g, &cli)
	cancel()
	errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).HandleError(err)
}
