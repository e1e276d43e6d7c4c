package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// EnvironmentFactory provides the environment in which tool requirements are available.
//
// Implementations are responsible for:
//   - Resolving pinned tool references (e.g., "cmake/4.1.0") to concrete installations
//   - Constructing environment variables (PATH, ...) exposing those tools
//
//go:generate mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentFactory interface {
	// GetEnvironment constructs an environment exposing the given tools.
	// Returns environment variables as "KEY=VALUE" strings suitable for process execution.
	GetEnvironment(ctx context.Context, tools []domain.Reference) ([]string, error)
}
