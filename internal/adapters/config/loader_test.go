package config_test

import (
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const libmotorYAML = `
name: libmotor
description: pmdc motor control lib
license: MIT
toolRequires:
  - cmake/4.1.0
  - ninja/1.13.1
  - cppcheck/2.18.3
requires:
  - mp-units/2.4.0
`

const testPackageYAML = `
toolRequires:
  - cmake/4.1.0
  - ninja/1.13.1
testRequires:
  - catch2/3.11.0
`

var root = filepath.FromSlash("/work")

func newLoader(t *testing.T, files fstest.MapFS) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	return config.NewLoaderWithFS(logger, config.NewMapFSAdapter(root, files)), logger
}

func TestLoader_LoadRecipe(t *testing.T) {
	l, _ := newLoader(t, fstest.MapFS{
		"libmotor/kiln.yaml": {Data: []byte(libmotorYAML)},
	})
	dir := filepath.Join(root, "libmotor")

	r, err := l.LoadRecipe(dir)
	require.NoError(t, err)

	assert.Equal(t, "libmotor", r.Name)
	assert.Equal(t, domain.PackageTypeLibrary, r.PackageType)
	assert.Equal(t, domain.DefaultGenerator, r.Generator)
	assert.Equal(t, domain.LibraryCompileDatabase, r.CompileDatabase)
	assert.Equal(t, []string{"libmotor"}, r.Libs)
	assert.Equal(t, config.DefaultExportsSources, r.ExportsSources)
	assert.Equal(t, domain.DefaultOptions().String(), r.DefaultOptions.String())
	assert.Equal(t, []domain.Reference{domain.MustParseReference("mp-units/2.4.0")}, r.Requires)
	assert.Len(t, r.ToolRequires, 3)
	assert.Equal(t, dir, r.Dir)
}

func TestLoader_LoadRecipe_Overrides(t *testing.T) {
	l, _ := newLoader(t, fstest.MapFS{
		"lib/kiln.yaml": {Data: []byte(`
name: libmotor
generator: Ninja Multi-Config
defaultOptions:
  shared: true
libs: [motor, motor_extra]
compileCommands:
  path: out
`)},
	})

	r, err := l.LoadRecipe(filepath.Join(root, "lib"))
	require.NoError(t, err)
	assert.Equal(t, "Ninja Multi-Config", r.Generator)
	assert.True(t, r.DefaultOptions.Enabled(domain.OptionShared))
	assert.Equal(t, []string{"motor", "motor_extra"}, r.Libs)
	assert.Equal(t, domain.CompileDatabaseTarget{Base: domain.BaseBuild, Path: "out"}, r.CompileDatabase)
}

func TestLoader_LoadRecipe_HeaderLibraryWarnsOnOptions(t *testing.T) {
	l, logger := newLoader(t, fstest.MapFS{
		"units/kiln.yaml": {Data: []byte("name: units\npackageType: header-library\ndefaultOptions: {shared: true}\n")},
	})
	logger.EXPECT().Warn("defaultOptions have no effect on header-library units")

	r, err := l.LoadRecipe(filepath.Join(root, "units"))
	require.NoError(t, err)
	assert.True(t, r.IsHeaderOnly())
	assert.Empty(t, r.Libs)
}

func TestLoader_LoadRecipe_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{name: "missing name", content: "description: x\n", wantErr: domain.ErrMissingRecipeName},
		{name: "invalid name", content: "name: LibMotor\n", wantErr: domain.ErrInvalidRecipeName},
		{name: "version range", content: "name: a\nrequires: [mp-units/^2.4]\n", wantErr: domain.ErrVersionRangeNotAllowed},
		{name: "unknown option", content: "name: a\ndefaultOptions: {lto: true}\n", wantErr: domain.ErrUnknownOption},
		{name: "bad base", content: "name: a\ncompileCommands: {base: home}\n", wantErr: domain.ErrInvalidCompileDatabaseBase},
		{name: "malformed yaml", content: "name: [\n", wantMsg: domain.ErrConfigParseFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLoader(t, fstest.MapFS{"r/kiln.yaml": {Data: []byte(tt.content)}})

			_, err := l.LoadRecipe(filepath.Join(root, "r"))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}
}

func TestLoader_LoadTestRecipe(t *testing.T) {
	l, _ := newLoader(t, fstest.MapFS{
		"libmotor/kiln.yaml":              {Data: []byte(libmotorYAML)},
		"libmotor/test_package/kiln.yaml": {Data: []byte(testPackageYAML)},
		"other/kiln.yaml":                 {Data: []byte("name: other\n")},
	})

	tr, err := l.LoadTestRecipe(filepath.Join(root, "libmotor", "test_package"))
	require.NoError(t, err)
	assert.Equal(t, domain.TestCompileDatabase, tr.CompileDatabase)
	assert.Equal(t, []domain.Reference{domain.MustParseReference("catch2/3.11.0")}, tr.TestRequires)
	assert.False(t, tr.RedeclareShared)
	assert.Equal(t, domain.DefaultTestBinary, tr.BinaryName())

	_, err = l.LoadTestRecipe(filepath.Join(root, "other", "test_package"))
	assert.True(t, errors.Is(err, domain.ErrTestRecipeNotFound))
}

func TestLoader_DiscoverRoot(t *testing.T) {
	l, _ := newLoader(t, fstest.MapFS{
		"libmotor/kiln.yaml":              {Data: []byte(libmotorYAML)},
		"libmotor/src/motor.cpp":          {Data: []byte("")},
		"libmotor/test_package/kiln.yaml": {Data: []byte(testPackageYAML)},
		"libmotor/test_package/src/t.cpp": {Data: []byte("")},
	})
	libDir := filepath.Join(root, "libmotor")

	tests := []struct {
		name string
		cwd  string
	}{
		{name: "recipe folder", cwd: libDir},
		{name: "nested folder", cwd: filepath.Join(libDir, "src")},
		{name: "test package", cwd: filepath.Join(libDir, "test_package")},
		{name: "test package sources", cwd: filepath.Join(libDir, "test_package", "src")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.DiscoverRoot(tt.cwd)
			require.NoError(t, err)
			assert.Equal(t, libDir, got)
		})
	}

	_, err := l.DiscoverRoot(filepath.Join(root, "elsewhere"))
	assert.True(t, errors.Is(err, domain.ErrRecipeNotFound))
}
