// Package shell runs command lines with an embedded POSIX shell interpreter.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultKillTimeout is how long a child gets between the interrupt and the
// kill signal once the run is cancelled.
const DefaultKillTimeout = 2 * time.Second

// ExitError reports a command line that finished with a non-zero status.
type ExitError struct {
	Status int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Status)
}

// ExitCode returns the exit status.
func (e *ExitError) ExitCode() int {
	return e.Status
}

// Executor implements ports.Executor using mvdan.cc/sh.
type Executor struct {
	stdin       io.Reader
	killTimeout time.Duration
}

// NewExecutor creates an Executor whose commands read the process stdin.
func NewExecutor() *Executor {
	return &Executor{
		stdin:       os.Stdin,
		killTimeout: DefaultKillTimeout,
	}
}

// Parse parses a command line into a shell program.
func Parse(script string) (*syntax.File, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return nil, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrInvalidCommand, "cannot parse command"),
			"command", script),
			"reason", err.Error())
	}
	return file, nil
}

// Execute runs inv.Script with errexit set. inv.Args become the positional
// parameters.
func (e *Executor) Execute(ctx context.Context, inv *domain.Invocation, stdout, stderr io.Writer) error {
	file, err := Parse(inv.Script)
	if err != nil {
		return err
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(inv.Env...)),
		interp.ExecHandlers(func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
			return interp.DefaultExecHandler(e.killTimeout)
		}),
		interp.StdIO(e.stdin, stdout, stderr),
		interp.Params(append([]string{"-e", "--"}, inv.Args...)...),
	}
	if inv.Dir != "" {
		opts = append(opts, interp.Dir(inv.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return zerr.With(zerr.With(
			zerr.Wrap(domain.ErrShellInitFailed, "cannot run command"),
			"target", inv.Target),
			"reason", err.Error())
	}

	err = runner.Run(ctx, file)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zerr.Wrap(ctxErr, "command interrupted")
	}
	if err == nil {
		return nil
	}

	var status interp.ExitStatus
	if errors.As(err, &status) {
		return zerr.With(zerr.Wrap(&ExitError{Status: int(status)}, "command failed"), "exit_code", int(status))
	}
	return zerr.Wrap(err, "command failed")
}
