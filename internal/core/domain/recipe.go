package domain

import (
	"path/filepath"

	"go.trai.ch/zerr"
)

// Package types.
const (
	PackageTypeLibrary       = "library"
	PackageTypeHeaderLibrary = "header-library"
)

// DefaultTestBinary is the executable run by the test flow, relative to the bin folder.
const DefaultTestBinary = "tests"

// Recipe describes how to build and package a library.
type Recipe struct {
	Name        string
	PackageType string
	License     string
	Author      string
	URL         string
	Description string
	Topics      []string

	DefaultOptions OptionSet
	ExportsSources []string

	ToolRequires []Reference
	Requires     []Reference

	Generator       string
	CompileDatabase CompileDatabaseTarget
	Libs            []string

	// Dir is the folder containing the recipe file.
	Dir string
}

// Validate checks the recipe for structural errors.
func (r *Recipe) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	return r.CompileDatabase.Validate()
}

// Requirements declares the pinned tool and library requirements of the recipe.
func (r *Recipe) Requirements() (*DependencySet, error) {
	deps := NewDependencySet()
	if err := deps.AddAll(KindTool, r.ToolRequires); err != nil {
		return nil, err
	}
	if err := deps.AddAll(KindLibrary, r.Requires); err != nil {
		return nil, err
	}
	return deps, nil
}

// Metadata returns the project metadata forwarded to CMake for the given identity.
func (r *Recipe) Metadata(id PackageIdentity) *ProjectMetadata {
	return &ProjectMetadata{
		Name:        r.Name,
		Version:     id.Version,
		Description: r.Description,
		GitHash:     id.Commit,
	}
}

// IsHeaderOnly reports whether the package binary is independent of settings.
func (r *Recipe) IsHeaderOnly() bool {
	return r.PackageType == PackageTypeHeaderLibrary
}

// TestPackageDir returns the folder expected to contain the test recipe.
func (r *Recipe) TestPackageDir() string {
	return filepath.Join(r.Dir, TestPackageDirName)
}

// TestRecipe describes the package that consumes and tests a built library.
// RedeclareShared propagates the tested package's library requirements and
// project metadata into the test build.
type TestRecipe struct {
	ToolRequires []Reference
	TestRequires []Reference
	Requires     []Reference

	Generator       string
	CompileDatabase CompileDatabaseTarget
	TestBinary      string
	RedeclareShared bool

	// Dir is the folder containing the test recipe file.
	Dir string
}

// Validate checks the test recipe for structural errors.
func (t *TestRecipe) Validate() error {
	return t.CompileDatabase.Validate()
}

// Requirements declares the test build requirements.
// The tested reference is always a library requirement; the tested package's
// own requirements are added when RedeclareShared is set.
func (t *TestRecipe) Requirements(tested Reference, testedRequires []Reference) (*DependencySet, error) {
	if tested.IsZero() {
		return nil, zerr.Wrap(ErrInvalidReference, "missing tested reference")
	}

	deps := NewDependencySet()
	if err := deps.AddAll(KindTool, t.ToolRequires); err != nil {
		return nil, err
	}
	if err := deps.AddAll(KindTest, t.TestRequires); err != nil {
		return nil, err
	}
	if err := deps.Add(KindLibrary, tested); err != nil {
		return nil, err
	}
	if t.RedeclareShared {
		if err := deps.AddAll(KindLibrary, testedRequires); err != nil {
			return nil, err
		}
	}
	if err := deps.AddAll(KindLibrary, t.Requires); err != nil {
		return nil, err
	}
	return deps, nil
}

// Metadata returns the project metadata for the test build.
// It is nil unless the tested package's metadata is redeclared.
func (t *TestRecipe) Metadata(tested *PackageRecord) *ProjectMetadata {
	if !t.RedeclareShared || tested == nil {
		return nil
	}
	return &ProjectMetadata{
		Name:        tested.Reference.Name,
		Version:     tested.Reference.Version,
		Description: tested.Description,
		GitHash:     tested.Commit,
	}
}

// BinaryName returns the test executable name.
func (t *TestRecipe) BinaryName() string {
	if t.TestBinary == "" {
		return DefaultTestBinary
	}
	return t.TestBinary
}
