// Package main is the entry point for pyrun.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/pyrun/cmd/pyrun/commands"
	"go.trai.ch/pyrun/internal/app"
	"go.trai.ch/pyrun/internal/core/domain"
	_ "go.trai.ch/pyrun/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

type jsonSwitcher interface {
	SetJSON(enable bool)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return domain.ExitFailure
	}
	defer cleanup()

	// 2. Interface - CLI
	var opts []commands.Option
	if sw, ok := components.Logger.(jsonSwitcher); ok {
		opts = append(opts, commands.WithLogFormatter(sw.SetJSON))
	}
	cli := commands.New(components.App, opts...)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return domain.ExitCode(err)
	}
	return domain.ExitSuccess
}
