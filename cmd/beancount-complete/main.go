package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beancount-complete/cli"
)

func main() {
	if err := cli.LoadEnv(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	var cmds cli.Commands
	kctx := kong.Parse(&cmds, cli.Options(&cmds)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.Run(ctx, kctx)
	if _, ok := err.(*cli.CommandError); !ok {
		kctx.FatalIfErrorf(err)
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
