// Package detector inspects the terminal to choose how progress is shown.
package detector

import (
	"os"

	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents how target progress is reported.
type OutputMode int

const (
	// ModeAuto picks a mode from the environment.
	ModeAuto OutputMode = iota
	// ModeLinear prints a start and a completion line per target.
	ModeLinear
	// ModeQuiet reports nothing beyond the command echo.
	ModeQuiet
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// DetectEnvironment returns the recommended output mode.
// CI and a redirected stderr get ModeQuiet.
func DetectEnvironment() OutputMode {
	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !IsTerminal(os.Stderr) || isCI {
		return ModeQuiet
	}
	return ModeLinear
}

// ResolveMode applies the --progress flag to the detected mode.
// flag should be one of: "auto", "linear", "none", or empty.
func ResolveMode(autoDetected OutputMode, flag string) (OutputMode, error) {
	switch flag {
	case "linear":
		return ModeLinear, nil
	case "none":
		return ModeQuiet, nil
	case "auto", "":
		return autoDetected, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(domain.ErrInvalidProgressMode, "cannot select output"), "progress", flag)
	}
}
