package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading recipes.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// DiscoverRoot walks up from cwd to find the folder containing kiln.yaml.
	DiscoverRoot(cwd string) (string, error)

	// LoadRecipe reads the library recipe in dir.
	LoadRecipe(dir string) (*domain.Recipe, error)

	// LoadTestRecipe reads the test recipe in dir.
	// It returns domain.ErrTestRecipeNotFound when dir has no recipe.
	LoadTestRecipe(dir string) (*domain.TestRecipe, error)
}
