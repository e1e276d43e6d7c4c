package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Publisher uploads packages to a remote registry.
//
//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks
type Publisher interface {
	// Push uploads the package folder of record under repository in registry.
	// It returns the full reference and digest of the pushed artifact.
	Push(ctx context.Context, record *domain.PackageRecord, target domain.UploadTarget) (*domain.UploadResult, error)
}
