package domain

import (
	"os"
	"path/filepath"
)

const (
	// KilnDirName is the name of the default kiln home directory inside the user home.
	KilnDirName = ".kiln"

	// PackagesDirName is the name of the directory holding installed packages.
	PackagesDirName = "p"

	// SourcesDirName is the name of the directory holding exported recipe sources.
	SourcesDirName = "s"

	// CacheDirName is the name of the tool cache directory.
	CacheDirName = "cache"

	// NixHubDirName is the name of the NixHub cache directory.
	NixHubDirName = "nixhub"

	// EnvDirName is the name of the environment cache directory.
	EnvDirName = "environments"

	// RecipeFileName is the name of the recipe file.
	RecipeFileName = "kiln.yaml"

	// TestPackageDirName is the name of the folder containing the test recipe.
	TestPackageDirName = "test_package"

	// RecordFileName is the name of the package record stored in each package folder.
	RecordFileName = "package.json"

	// CompileDatabaseFileName is the compilation database emitted by CMake.
	CompileDatabaseFileName = "compile_commands.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultHome returns the default kiln home directory.
// It falls back to a relative .kiln when the user home cannot be determined.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return KilnDirName
	}
	return filepath.Join(home, KilnDirName)
}

// PackagesPath returns the directory holding installed packages under home.
func PackagesPath(home string) string {
	return filepath.Join(home, PackagesDirName)
}

// SourcesPath returns the directory holding exported sources under home.
func SourcesPath(home string) string {
	return filepath.Join(home, SourcesDirName)
}

// NixHubCachePath returns the path for the NixHub cache under home.
func NixHubCachePath(home string) string {
	return filepath.Join(home, CacheDirName, NixHubDirName)
}

// EnvCachePath returns the path for the environment cache under home.
func EnvCachePath(home string) string {
	return filepath.Join(home, CacheDirName, EnvDirName)
}
