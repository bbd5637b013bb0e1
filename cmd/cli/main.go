package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/totpvault/internal/buildinfo"
	"github.com/dmitrijs2005/totpvault/internal/client/cli"
	"github.com/dmitrijs2005/totpvault/internal/client/config"
	"github.com/dmitrijs2005/totpvault/internal/flagx"
)

func main() {
	args := os.Args[1:]
	command := flagx.Positional(args, config.ValueFlags)

	if len(command) == 0 {
		buildinfo.PrintBuildData(os.Stdout)
	}

	cfg, err := config.LoadConfig(args[:len(args)-len(command)])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, command); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}
