// Package app implements the application layer for pyrun.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/pyrun/internal/adapters/detector"  //nolint:depguard // Output mode selection
	"go.trai.ch/pyrun/internal/adapters/telemetry" //nolint:depguard // Tracer construction
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/pyrun/internal/core/ports"
	"go.trai.ch/pyrun/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	envFactory   ports.EnvironmentFactory
	renderer     ports.Renderer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	envFactory ports.EnvironmentFactory,
	renderer ports.Renderer,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		envFactory:   envFactory,
		renderer:     renderer,
	}
}

// RunOptions configuration for the Run and ListTargets methods.
type RunOptions struct {
	// Dir is the working directory. Empty means the process working directory.
	Dir string
	// ConfigPath names the build description. Relative paths are resolved
	// against Dir. Empty means discovery from Dir.
	ConfigPath string
	// Overrides are VAR=value assignments from the command line.
	Overrides map[string]string
	DryRun    bool
	Silent    bool
	// Progress is one of "auto", "linear" or "none".
	Progress string

	Stdout io.Writer
	Stderr io.Writer
}

func (o *RunOptions) setDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Run executes the target called name. args become the positional
// parameters of that target's commands.
func (a *App) Run(ctx context.Context, name string, args []string, opts RunOptions) error {
	opts.setDefaults()

	// 1. Load the table
	table, err := a.loadTable(opts)
	if err != nil {
		return err
	}

	// 2. Builtin targets
	if name == "" {
		name = domain.DefaultTarget
	}
	target, declared := table.Lookup(name)
	if declared && target.Builtin {
		return a.printListing(opts.Stdout, table)
	}

	// 3. Environment
	env, err := a.envFactory.GetEnvironment(table.Root, table.Variables, opts.Overrides)
	if err != nil {
		return err
	}

	// 4. Plan, falling back for undeclared targets
	var plan []*domain.Target
	if declared {
		plan, err = table.Plan(name)
		if err != nil {
			return err
		}
	} else {
		if table.Fallback == "" {
			return zerr.With(zerr.Wrap(domain.ErrUnknownTarget, "no rule to run target"), "target", name)
		}
		plan = []*domain.Target{fallbackTarget(name, table.Fallback)}
		args = append([]string{name}, args...)
	}

	// 5. Preflight
	if err := env.RequireAll(plan); err != nil {
		return err
	}

	// 6. Run the scheduler
	tracer, shutdown, err := a.newTracer(opts.Progress)
	if err != nil {
		return err
	}
	defer shutdown()

	sched := scheduler.NewScheduler(a.executor, a.logger, tracer)
	return sched.Run(ctx, plan, scheduler.Request{
		Dir:    table.Root,
		Env:    env,
		Args:   args,
		DryRun: opts.DryRun,
		Silent: opts.Silent,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
}

// ListTargets returns the names shown by the help target, in declaration order.
func (a *App) ListTargets(_ context.Context, opts RunOptions) ([]string, error) {
	table, err := a.loadTable(opts)
	if err != nil {
		return nil, err
	}
	return table.VisibleNames(), nil
}

func (a *App) loadTable(opts RunOptions) (*domain.Table, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrFailedToGetRoot, "cannot load build description"), "reason", err.Error())
	}

	if opts.ConfigPath == "" {
		return a.configLoader.Load(dir)
	}

	path := opts.ConfigPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return a.configLoader.LoadFile(path)
}

func (a *App) newTracer(progress string) (ports.Tracer, func(), error) {
	mode, err := detector.ResolveMode(detector.DetectEnvironment(), progress)
	if err != nil {
		return nil, nil, err
	}
	if mode != detector.ModeLinear || a.renderer == nil {
		return telemetry.NewNoOpTracer(), func() {}, nil
	}

	tracer := telemetry.NewOTelTracer("pyrun", a.renderer)
	return tracer, func() { _ = tracer.Shutdown(context.Background()) }, nil
}

func fallbackTarget(name, script string) *domain.Target {
	return &domain.Target{
		Name:     domain.NewInternedString(name),
		Commands: []domain.Command{{Script: script}},
	}
}
