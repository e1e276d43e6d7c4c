package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// BuildSystem drives the external build tool.
//
//go:generate mockgen -source=build_system.go -destination=mocks/mock_build_system.go -package=mocks
type BuildSystem interface {
	// Configure generates the build tree using the generated toolchain.
	Configure(ctx context.Context, layout domain.BuildLayout, cfg domain.BuildConfig, env []string, out io.Writer) error

	// Build compiles the configured build tree.
	Build(ctx context.Context, layout domain.BuildLayout, cfg domain.BuildConfig, env []string, out io.Writer) error

	// Install copies build artifacts into prefix.
	Install(ctx context.Context, layout domain.BuildLayout, cfg domain.BuildConfig, prefix string, env []string, out io.Writer) error
}
