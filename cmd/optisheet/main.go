// Package main is the entry point for the optisheet CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/run"

	"optisheet/internal/backend"
	"optisheet/internal/cli"
	"optisheet/internal/commands"
	"optisheet/internal/config"
	"optisheet/internal/exitcode"
	"optisheet/internal/service"
)

// Run runs the CLI until the command ends or a termination signal arrives.
// Returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return backend.New(backend.Config{
			Timeout: cfg.Settings.RequestTimeout,
			Logger:  cfg.Logger,
		}), nil
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := exitcode.Success
	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				code = dispatcher.Run(ctx, args, stdout, stderr)
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	_ = g.Run()
	return code
}

func main() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
