package domain

import (
	"path/filepath"

	"go.trai.ch/zerr"
)

// BuildLayout locates the folders of a CMake build below the source folder.
type BuildLayout struct {
	SourceFolder     string
	BuildFolder      string
	GeneratorsFolder string
	BinFolder        string
}

// NewBuildLayout computes the standard CMake layout.
// Single-config generators build in build/<BuildType>; multi-config generators
// share build/ and place binaries in build/<BuildType>.
func NewBuildLayout(sourceFolder, generator, buildType string) BuildLayout {
	if buildType == "" {
		buildType = DefaultBuildType
	}
	root := filepath.Join(sourceFolder, "build")

	if IsMultiConfig(generator) {
		return BuildLayout{
			SourceFolder:     sourceFolder,
			BuildFolder:      root,
			GeneratorsFolder: filepath.Join(root, "generators"),
			BinFolder:        filepath.Join(root, buildType),
		}
	}

	build := filepath.Join(root, buildType)
	return BuildLayout{
		SourceFolder:     sourceFolder,
		BuildFolder:      build,
		GeneratorsFolder: filepath.Join(build, "generators"),
		BinFolder:        build,
	}
}

// CompileDatabaseBase names the folder a compile database target is relative to.
type CompileDatabaseBase string

const (
	// BaseBuild resolves relative to the build folder.
	BaseBuild CompileDatabaseBase = "build"
	// BaseSource resolves relative to the source folder.
	BaseSource CompileDatabaseBase = "source"
)

// CompileDatabaseTarget is where compile_commands.json is copied after configure.
type CompileDatabaseTarget struct {
	Base CompileDatabaseBase `yaml:"base"`
	Path string              `yaml:"path"`
}

// LibraryCompileDatabase copies next to the per-build-type folders.
var LibraryCompileDatabase = CompileDatabaseTarget{Base: BaseBuild, Path: ".."}

// TestCompileDatabase copies into the tested library's build folder.
var TestCompileDatabase = CompileDatabaseTarget{Base: BaseSource, Path: "../build"}

// Validate checks the base folder.
func (t CompileDatabaseTarget) Validate() error {
	switch t.Base {
	case BaseBuild, BaseSource:
		return nil
	default:
		return zerr.With(zerr.Wrap(ErrInvalidCompileDatabaseBase, "validate compile database"), "base", string(t.Base))
	}
}

// Resolve returns the destination directory for the given layout.
func (t CompileDatabaseTarget) Resolve(l BuildLayout) string {
	base := l.BuildFolder
	if t.Base == BaseSource {
		base = l.SourceFolder
	}
	return filepath.Clean(filepath.Join(base, t.Path))
}
