package ports

import "context"

// VCS queries version control metadata of a recipe folder.
//
//go:generate mockgen -source=vcs.go -destination=mocks/mock_vcs.go -package=mocks
type VCS interface {
	// Describe returns the raw output of describing HEAD by its most recent tag.
	Describe(ctx context.Context, dir string) (string, error)

	// Head returns the full commit hash of HEAD.
	Head(ctx context.Context, dir string) (string, error)
}
