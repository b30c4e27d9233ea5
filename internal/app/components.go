package app

import "go.trai.ch/pyrun/internal/core/ports"

// Components holds what the entry point needs to run the CLI.
type Components struct {
	App    *App
	Logger ports.Logger
}
