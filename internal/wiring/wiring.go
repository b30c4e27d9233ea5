// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pyrun/internal/adapters/config"
	_ "go.trai.ch/pyrun/internal/adapters/env"
	_ "go.trai.ch/pyrun/internal/adapters/linear"
	_ "go.trai.ch/pyrun/internal/adapters/logger"
	_ "go.trai.ch/pyrun/internal/adapters/shell"
	// Register app nodes.
	_ "go.trai.ch/pyrun/internal/app"
)
