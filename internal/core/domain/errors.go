package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrTargetAlreadyExists is returned when attempting to add a target with a name that already exists.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrMissingDependency is returned when a target depends on a target that is not declared.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when target dependencies form a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrBuiltinDependency is returned when a target depends on help or list.
	ErrBuiltinDependency = zerr.New("targets cannot depend on builtin targets")

	// ErrUnknownTarget is returned when the requested target is not declared and no fallback is configured.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrMissingEnvironmentVariable is returned when a variable required by a planned target is unset or empty.
	ErrMissingEnvironmentVariable = zerr.New("missing required environment variable")

	// ErrCommandFailed is the cause of every CommandError.
	ErrCommandFailed = zerr.New("command failed")

	// ErrInvalidCommand is returned when a command line cannot be parsed as shell.
	ErrInvalidCommand = zerr.New("invalid shell command")

	// ErrShellInitFailed is returned when the shell interpreter cannot be set up for an invocation.
	ErrShellInitFailed = zerr.New("failed to initialize shell")

	// ErrReservedTargetName is returned when a build description declares help or list.
	ErrReservedTargetName = zerr.New("target name is reserved")

	// ErrInvalidTargetName is returned when a target name contains invalid characters.
	ErrInvalidTargetName = zerr.New("invalid target name")

	// ErrInvalidVariableName is returned when a variable name is not a shell identifier.
	ErrInvalidVariableName = zerr.New("invalid variable name")

	// ErrInvalidVariableValue is returned when a variable default cannot be expanded.
	ErrInvalidVariableValue = zerr.New("invalid variable value")

	// ErrUnsupportedVersion is returned when the build description declares an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported config version, expected \"1\"")

	// ErrEmptyCommand is returned when a command entry has no script.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrConfigReadFailed is returned when the build description cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the build description cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrEnvFileReadFailed is returned when the .env file exists but cannot be parsed.
	ErrEnvFileReadFailed = zerr.New("failed to read .env file")

	// ErrFailedToGetRoot is returned when the working directory cannot be resolved.
	ErrFailedToGetRoot = zerr.New("failed to resolve working directory")

	// ErrInvalidLogFormat is returned for an unknown --log-format value.
	ErrInvalidLogFormat = zerr.New("invalid log format, expected 'pretty' or 'json'")

	// ErrInvalidProgressMode is returned for an unknown --progress value.
	ErrInvalidProgressMode = zerr.New("invalid progress mode, expected 'auto', 'linear' or 'none'")
)

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Target string
	Script string
	Code   int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("target %q: command exited with status %d", e.Target, e.Code)
}

// ExitCode returns the child's exit status.
func (e *CommandError) ExitCode() int {
	return e.Code
}

// Unwrap lets errors.Is match ErrCommandFailed.
func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}
