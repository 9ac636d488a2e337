// Package main is the entry point for the learnsphere CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"learnsphere/internal/backend/learnsphere"
	"learnsphere/internal/cli"
	"learnsphere/internal/commands"
	"learnsphere/internal/config"
	"learnsphere/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config, errOut io.Writer) (service.Service, error) {
		return learnsphere.NewForCLI(cfg, errOut), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
