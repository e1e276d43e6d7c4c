// Package config loads kiln recipes from YAML.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using YAML recipe files.
type Loader struct {
	Logger ports.Logger
	fs     FileSystem
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a new Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, fs: fsys}
}

// DiscoverRoot walks up from cwd to the nearest folder containing kiln.yaml.
// Starting inside test_package resolves to the library recipe above it.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		if l.hasRecipe(currentDir) {
			parent := filepath.Dir(currentDir)
			if filepath.Base(currentDir) == domain.TestPackageDirName && l.hasRecipe(parent) {
				return parent, nil
			}
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, "discover recipe"), "cwd", cwd)
}

func (l *Loader) hasRecipe(dir string) bool {
	info, err := l.fs.Stat(filepath.Join(dir, domain.RecipeFileName))
	return err == nil && !info.IsDir()
}

// LoadRecipe reads and validates the library recipe in dir.
func (l *Loader) LoadRecipe(dir string) (*domain.Recipe, error) {
	path := filepath.Join(dir, domain.RecipeFileName)

	var file RecipeFile
	if err := l.readAndUnmarshalYAML(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, "load recipe"), "dir", dir)
		}
		return nil, zerr.With(zerr.Wrap(err, "read recipe"), "file", path)
	}

	recipe, err := l.buildRecipe(&file, dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "load recipe"), "file", path)
	}
	return recipe, nil
}

// LoadTestRecipe reads and validates the test recipe in dir.
func (l *Loader) LoadTestRecipe(dir string) (*domain.TestRecipe, error) {
	path := filepath.Join(dir, domain.RecipeFileName)

	var file TestRecipeFile
	if err := l.readAndUnmarshalYAML(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrTestRecipeNotFound, "load test recipe"), "dir", dir)
		}
		return nil, zerr.With(zerr.Wrap(err, "read test recipe"), "file", path)
	}

	recipe, err := buildTestRecipe(&file, dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "load test recipe"), "file", path)
	}
	return recipe, nil
}

func (l *Loader) buildRecipe(file *RecipeFile, dir string) (*domain.Recipe, error) {
	toolRequires, err := parseReferences(file.ToolRequires, "toolRequires")
	if err != nil {
		return nil, err
	}
	requires, err := parseReferences(file.Requires, "requires")
	if err != nil {
		return nil, err
	}
	options, err := buildOptions(file.DefaultOptions)
	if err != nil {
		return nil, err
	}

	r := &domain.Recipe{
		Name:            file.Name,
		PackageType:     valueOr(file.PackageType, domain.PackageTypeLibrary),
		License:         file.License,
		Author:          file.Author,
		URL:             file.URL,
		Description:     file.Description,
		Topics:          file.Topics,
		DefaultOptions:  options,
		ExportsSources:  file.ExportsSources,
		ToolRequires:    toolRequires,
		Requires:        requires,
		Generator:       valueOr(file.Generator, domain.DefaultGenerator),
		CompileDatabase: compileDatabaseOr(file.CompileCommands, domain.LibraryCompileDatabase),
		Libs:            file.Libs,
		Dir:             dir,
	}

	if len(r.ExportsSources) == 0 {
		r.ExportsSources = slices.Clone(DefaultExportsSources)
	}
	if len(r.Libs) == 0 && !r.IsHeaderOnly() {
		r.Libs = []string{r.Name}
	}
	if r.IsHeaderOnly() && len(file.DefaultOptions) > 0 {
		l.Logger.Warn("defaultOptions have no effect on header-library " + r.Name)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func buildTestRecipe(file *TestRecipeFile, dir string) (*domain.TestRecipe, error) {
	toolRequires, err := parseReferences(file.ToolRequires, "toolRequires")
	if err != nil {
		return nil, err
	}
	testRequires, err := parseReferences(file.TestRequires, "testRequires")
	if err != nil {
		return nil, err
	}
	requires, err := parseReferences(file.Requires, "requires")
	if err != nil {
		return nil, err
	}

	r := &domain.TestRecipe{
		ToolRequires:    toolRequires,
		TestRequires:    testRequires,
		Requires:        requires,
		Generator:       valueOr(file.Generator, domain.DefaultGenerator),
		CompileDatabase: compileDatabaseOr(file.CompileCommands, domain.TestCompileDatabase),
		TestBinary:      file.TestBinary,
		RedeclareShared: file.RedeclareShared,
		Dir:             dir,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func parseReferences(raw []string, field string) ([]domain.Reference, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	refs := make([]domain.Reference, 0, len(raw))
	for _, s := range raw {
		ref, err := domain.ParseReference(s)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "parse "+field), "reference", s)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// buildOptions overlays the declared defaults on the recognized option set.
func buildOptions(declared map[string]bool) (domain.OptionSet, error) {
	opts := domain.DefaultOptions()

	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		o, ok := domain.ParseOption(name)
		if !ok {
			return domain.OptionSet{}, zerr.With(zerr.Wrap(domain.ErrUnknownOption, "parse defaultOptions"), "option", name)
		}
		opts = opts.Set(o, declared[name])
	}
	return opts, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func compileDatabaseOr(t *domain.CompileDatabaseTarget, fallback domain.CompileDatabaseTarget) domain.CompileDatabaseTarget {
	if t == nil {
		return fallback
	}
	out := *t
	if out.Base == "" {
		out.Base = fallback.Base
	}
	return out
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(path string, target any) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
