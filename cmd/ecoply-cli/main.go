package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yndnr/ecoply-go/internal/cli/command"
	"github.com/yndnr/ecoply-go/internal/core/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := command.App().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		command.PrintError(os.Stderr, err)
		os.Exit(domain.ExitCode(err))
	}
}
