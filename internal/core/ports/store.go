package ports

import "go.trai.ch/kiln/internal/core/domain"

// PackageStore defines the local package cache.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type PackageStore interface {
	// Get retrieves the record of a specific package binary.
	// Returns nil, nil if not found.
	Get(ref domain.Reference, packageID string) (*domain.PackageRecord, error)

	// Find retrieves a record of ref compatible with settings.
	// Returns nil, nil if no compatible binary exists.
	Find(ref domain.Reference, settings domain.Settings) (*domain.PackageRecord, error)

	// FindMatching is Find restricted to binaries built with options.
	// A nil options map matches every binary.
	FindMatching(ref domain.Reference, settings domain.Settings, options map[string]bool) (*domain.PackageRecord, error)

	// Put stores the record in the package folder it names.
	Put(record *domain.PackageRecord) error

	// List returns every record in the cache ordered by reference.
	List() ([]*domain.PackageRecord, error)

	// Remove deletes every binary of ref and returns how many were removed.
	Remove(ref domain.Reference) (int, error)

	// PackageFolder returns the folder a binary of ref with packageID is installed into.
	PackageFolder(ref domain.Reference, packageID string) string

	// SourceFolder returns the folder sources of ref at revision are exported into.
	// An empty revision names the folder of the reference itself.
	SourceFolder(ref domain.Reference, revision string) string
}
