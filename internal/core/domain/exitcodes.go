package domain

import (
	"context"
	"errors"
)

// Exit codes returned by pyrun. A failing child keeps its own status.
const (
	// ExitSuccess indicates the target completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a failure with no more specific code.
	ExitFailure = 1

	// ExitUsage indicates a bad invocation, including an unknown target with no fallback (EX_USAGE).
	ExitUsage = 64

	// ExitDataErr indicates a command line that is not valid shell (EX_DATAERR).
	ExitDataErr = 65

	// ExitConfig indicates a missing required variable or an invalid build description (EX_CONFIG).
	ExitConfig = 78

	// ExitInterrupted indicates the run was cancelled by SIGINT or SIGTERM.
	ExitInterrupted = 130
)

var usageErrors = []error{
	ErrUnknownTarget,
	ErrInvalidLogFormat,
	ErrInvalidProgressMode,
}

var configErrors = []error{
	ErrMissingEnvironmentVariable,
	ErrTargetAlreadyExists,
	ErrMissingDependency,
	ErrCycleDetected,
	ErrBuiltinDependency,
	ErrReservedTargetName,
	ErrInvalidTargetName,
	ErrInvalidVariableName,
	ErrInvalidVariableValue,
	ErrUnsupportedVersion,
	ErrEmptyCommand,
	ErrConfigReadFailed,
	ErrConfigParseFailed,
	ErrEnvFileReadFailed,
}

// ExitCode maps an error returned by the application to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code != 0 {
		return cmdErr.Code
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	if errors.Is(err, ErrInvalidCommand) {
		return ExitDataErr
	}

	if isAny(err, usageErrors) {
		return ExitUsage
	}

	if isAny(err, configErrors) {
		return ExitConfig
	}

	return ExitFailure
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
