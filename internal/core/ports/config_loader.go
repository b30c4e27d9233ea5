package ports

import "go.trai.ch/pyrun/internal/core/domain"

// ConfigLoader defines the interface for loading the target table.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the build description by walking up from cwd.
	// Without one it returns the default table rooted at cwd.
	Load(cwd string) (*domain.Table, error)

	// LoadFile reads the build description at path. The table is rooted
	// at the directory containing it.
	LoadFile(path string) (*domain.Table, error)
}
