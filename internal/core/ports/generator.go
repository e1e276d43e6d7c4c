package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Generator writes the toolchain and dependency files consumed by the build system.
//
//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type Generator interface {
	// Generate writes files into layout.GeneratorsFolder for cfg and the resolved dependencies.
	Generate(ctx context.Context, layout domain.BuildLayout, cfg domain.BuildConfig, deps []*domain.PackageRecord) error
}
