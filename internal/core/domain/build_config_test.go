package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestBuildConfig_CacheVariables(t *testing.T) {
	settings := domain.Settings{OS: domain.OSLinux, Arch: "x86_64", BuildType: "Release"}

	t.Run("library config forwards metadata", func(t *testing.T) {
		md := &domain.ProjectMetadata{
			Name:        "libmotor",
			Version:     "v0.3.0",
			Description: "pmdc motor control lib",
			GitHash:     "1a2b3c",
		}
		cfg := domain.NewBuildConfig("", settings, domain.DefaultOptions(), md)

		// Mutating the input must not leak into the config.
		md.Name = "changed"

		assert.Equal(t, domain.DefaultGenerator, cfg.Generator)
		assert.Equal(t, []domain.CacheVariable{
			{Name: "CONAN_PROJECT_NAME", Value: "libmotor"},
			{Name: "CONAN_PROJECT_VERSION", Value: "v0.3.0"},
			{Name: "CONAN_PROJECT_DESCRIPTION", Value: "pmdc motor control lib"},
			{Name: "CONAN_PROJECT_GIT_HASH", Value: "1a2b3c"},
			{Name: "CMAKE_EXPORT_COMPILE_COMMANDS", Value: "ON"},
		}, cfg.CacheVariables())
	})

	t.Run("test config only exports compile commands", func(t *testing.T) {
		cfg := domain.NewBuildConfig("Ninja", settings, domain.OptionSet{}, nil)
		assert.Equal(t, []domain.CacheVariable{
			{Name: "CMAKE_EXPORT_COMPILE_COMMANDS", Value: "ON"},
		}, cfg.CacheVariables())
	})
}

func TestBuildConfig_ToolchainVariables(t *testing.T) {
	settings := domain.Settings{OS: domain.OSLinux, Arch: "x86_64", BuildType: "Debug"}

	t.Run("static with fPIC", func(t *testing.T) {
		cfg := domain.NewBuildConfig("Ninja", settings, domain.DefaultOptions(), nil)
		assert.Equal(t, []domain.CacheVariable{
			{Name: "CMAKE_BUILD_TYPE", Value: "Debug"},
			{Name: "BUILD_SHARED_LIBS", Value: "OFF"},
			{Name: "CMAKE_POSITION_INDEPENDENT_CODE", Value: "ON"},
		}, cfg.ToolchainVariables())
	})

	t.Run("removed fPIC emits nothing", func(t *testing.T) {
		opts := domain.PruneOptions(domain.DefaultOptions(), settings, map[string]bool{"shared": true})
		cfg := domain.NewBuildConfig("Ninja Multi-Config", settings, opts, nil)
		assert.Equal(t, []domain.CacheVariable{
			{Name: "BUILD_SHARED_LIBS", Value: "ON"},
		}, cfg.ToolchainVariables())
	})
}

func TestNewBuildLayout(t *testing.T) {
	src := filepath.FromSlash("/work/libmotor")

	t.Run("single config", func(t *testing.T) {
		l := domain.NewBuildLayout(src, "Ninja", "Release")
		assert.Equal(t, filepath.Join(src, "build", "Release"), l.BuildFolder)
		assert.Equal(t, filepath.Join(src, "build", "Release", "generators"), l.GeneratorsFolder)
		assert.Equal(t, l.BuildFolder, l.BinFolder)
	})

	t.Run("multi config", func(t *testing.T) {
		l := domain.NewBuildLayout(src, "Ninja Multi-Config", "Debug")
		assert.Equal(t, filepath.Join(src, "build"), l.BuildFolder)
		assert.Equal(t, filepath.Join(src, "build", "generators"), l.GeneratorsFolder)
		assert.Equal(t, filepath.Join(src, "build", "Debug"), l.BinFolder)
	})
}

func TestCompileDatabaseTarget_Resolve(t *testing.T) {
	lib := domain.NewBuildLayout(filepath.FromSlash("/work/libmotor"), "Ninja", "Release")
	assert.Equal(t, filepath.FromSlash("/work/libmotor/build"), domain.LibraryCompileDatabase.Resolve(lib))

	test := domain.NewBuildLayout(filepath.FromSlash("/work/libmotor/test_package"), "Ninja", "Release")
	assert.Equal(t, filepath.FromSlash("/work/libmotor/build"), domain.TestCompileDatabase.Resolve(test))

	assert.Error(t, domain.CompileDatabaseTarget{Base: "home"}.Validate())
}
