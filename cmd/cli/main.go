package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/ccxpauth/internal/buildinfo"
	"github.com/dmitrijs2005/ccxpauth/internal/client/cli"
	"github.com/dmitrijs2005/ccxpauth/internal/client/config"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		buildinfo.PrintBuildData(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
