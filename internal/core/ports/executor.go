// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/pyrun/internal/core/domain"
)

// Executor defines the interface for running a single command line.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs inv.Script in inv.Dir with inv.Env and inv.Args as
	// positional parameters.
	//
	// A non-zero exit is returned as an error implementing ExitCoder.
	Execute(ctx context.Context, inv *domain.Invocation, stdout, stderr io.Writer) error
}

// ExitCoder is implemented by errors that carry a child exit status.
type ExitCoder interface {
	ExitCode() int
}
