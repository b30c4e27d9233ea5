// Package scheduler runs a plan of targets one command at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/pyrun/internal/core/ports"
	"go.trai.ch/zerr"
)

// TargetStatus represents the status of a target.
type TargetStatus string

const (
	// StatusPending indicates the target is waiting to be executed.
	StatusPending TargetStatus = "Pending"
	// StatusRunning indicates the target is currently executing.
	StatusRunning TargetStatus = "Running"
	// StatusCompleted indicates the target has finished successfully.
	StatusCompleted TargetStatus = "Completed"
	// StatusFailed indicates the target execution failed.
	StatusFailed TargetStatus = "Failed"
)

// Request describes one run of a plan.
type Request struct {
	// Dir is the directory commands run in.
	Dir string
	// Env is the environment every command runs with.
	Env domain.Environment
	// Args are the positional parameters of the last target of the plan.
	Args []string
	// DryRun echoes commands without running them.
	DryRun bool
	// Silent suppresses the echo of every command.
	Silent bool

	Stdout io.Writer
	Stderr io.Writer
}

// Scheduler executes a plan sequentially and stops at the first failure.
type Scheduler struct {
	executor ports.Executor
	logger   ports.Logger
	tracer   ports.Tracer

	mu           sync.RWMutex
	targetStatus map[domain.InternedString]TargetStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(executor ports.Executor, logger ports.Logger, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:     executor,
		logger:       logger,
		tracer:       tracer,
		targetStatus: make(map[domain.InternedString]TargetStatus),
	}
}

func (s *Scheduler) initTargetStatuses(plan []*domain.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, target := range plan {
		s.targetStatus[target.Name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TargetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetStatus[name] = status
}

// Run executes the plan in order. Only the last target receives req.Args.
func (s *Scheduler) Run(ctx context.Context, plan []*domain.Target, req Request) error {
	if req.Stdout == nil {
		req.Stdout = os.Stdout
	}
	if req.Stderr == nil {
		req.Stderr = os.Stderr
	}

	s.initTargetStatuses(plan)

	names := make([]string, len(plan))
	for i, target := range plan {
		names[i] = target.Name.String()
	}
	s.tracer.EmitPlan(ctx, names)

	env := req.Env.List()
	for i, target := range plan {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(err, "run interrupted")
		}

		var args []string
		if i == len(plan)-1 {
			args = req.Args
		}

		if err := s.runTarget(ctx, target, env, args, req); err != nil {
			s.updateStatus(target.Name, StatusFailed)
			return err
		}
		s.updateStatus(target.Name, StatusCompleted)
	}
	return nil
}

func (s *Scheduler) runTarget(
	ctx context.Context,
	target *domain.Target,
	env, args []string,
	req Request,
) error {
	name := target.Name.String()
	s.updateStatus(target.Name, StatusRunning)

	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()
	span.SetAttribute("target.commands", len(target.Commands))

	for _, cmd := range target.Commands {
		inv := &domain.Invocation{
			Target: name,
			Script: cmd.Script,
			Dir:    req.Dir,
			Env:    env,
			Args:   args,
			Silent: cmd.Silent || req.Silent,
		}

		// A dry run shows silent commands too.
		if req.DryRun || !inv.Silent {
			s.logger.Info(cmd.Script)
		}
		if req.DryRun {
			continue
		}

		err := s.executor.Execute(ctx, inv, req.Stdout, req.Stderr)
		if err == nil {
			continue
		}

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			span.RecordError(err)
			return err
		}

		code := exitCode(err)
		if code != 0 && cmd.IgnoreFailure {
			span.SetAttribute("exit_code", code)
			s.logger.Warn(fmt.Sprintf("target %q: command exited with status %d (ignored)", name, code))
			continue
		}

		span.RecordError(err)
		if code != 0 {
			return &domain.CommandError{Target: name, Script: cmd.Script, Code: code}
		}
		return zerr.With(err, "target", name)
	}
	return nil
}

func exitCode(err error) int {
	var coder ports.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 0
}
