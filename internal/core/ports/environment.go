package ports

import "go.trai.ch/pyrun/internal/core/domain"

// EnvironmentFactory resolves the environment commands run with.
//
//go:generate mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentFactory interface {
	// GetEnvironment layers, from lowest to highest precedence: vars, the
	// dotenv files of root, the process environment and overrides.
	GetEnvironment(root string, vars []domain.Variable, overrides map[string]string) (domain.Environment, error)
}
