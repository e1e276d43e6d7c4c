package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pipeline"
)

type mockApp struct {
	createDir  string
	createOpts app.CreateOptions
	buildOpts  app.BuildOptions
	testOpts   app.TestOptions
	importOpts app.ImportOptions
	listName   string
	uploadRef  string
	uploadOpts app.UploadOptions
	cleanOpts  app.CleanOptions
	err        error
}

func (m *mockApp) Create(_ context.Context, dir string, opts app.CreateOptions) (*domain.PackageRecord, error) {
	m.createDir = dir
	m.createOpts = opts
	return &domain.PackageRecord{}, m.err
}

func (m *mockApp) Build(_ context.Context, _ string, opts app.BuildOptions) (*pipeline.LibraryResult, error) {
	m.buildOpts = opts
	return &pipeline.LibraryResult{}, m.err
}

func (m *mockApp) Test(_ context.Context, _ string, opts app.TestOptions) error {
	m.testOpts = opts
	return m.err
}

func (m *mockApp) Inspect(_ context.Context, _ string, _ app.BuildOptions, w io.Writer) error {
	_, _ = io.WriteString(w, "name: libmotor\n")
	return m.err
}

func (m *mockApp) Import(_ context.Context, opts app.ImportOptions) (*domain.PackageRecord, error) {
	m.importOpts = opts
	return &domain.PackageRecord{}, m.err
}

func (m *mockApp) List(_ context.Context, name string, _ io.Writer) error {
	m.listName = name
	return m.err
}

func (m *mockApp) Upload(_ context.Context, reference string, opts app.UploadOptions) (*domain.UploadResult, error) {
	m.uploadRef = reference
	m.uploadOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.UploadResult{Reference: "ghcr.io/acme/libmotor:v0.3.0-aa", Digest: "sha256:1"}, nil
}

func (m *mockApp) Clean(_ context.Context, opts app.CleanOptions) error {
	m.cleanOpts = opts
	return m.err
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Create(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		m := &mockApp{}
		dir := t.TempDir()

		_, err := execute(t, m, "create", dir,
			"-s", "build_type=Debug", "-o", "shared=true", "--can-run", "false", "--no-test")
		require.NoError(t, err)

		assert.Equal(t, filepath.Clean(dir), m.createDir)
		assert.Equal(t, []string{"build_type=Debug"}, m.createOpts.Settings)
		assert.Equal(t, []string{"shared=true"}, m.createOpts.Options)
		require.NotNil(t, m.createOpts.CanRun)
		assert.False(t, *m.createOpts.CanRun)
		assert.True(t, m.createOpts.NoTest)
	})

	t.Run("auto can-run leaves detection to the app", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "create")
		require.NoError(t, err)
		assert.Nil(t, m.createOpts.CanRun)
	})

	t.Run("rejects invalid can-run", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "create", "--can-run", "sometimes")
		assert.True(t, errors.Is(err, domain.ErrInvalidCanRun))
	})

	t.Run("returns error on failure", func(t *testing.T) {
		_, err := execute(t, &mockApp{err: errors.New("simulated error")}, "create")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Build(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "build", "-o", "fPIC=false", "-o", "shared=false")
	require.NoError(t, err)
	assert.Equal(t, []string{"fPIC=false", "shared=false"}, m.buildOpts.Options)
}

func TestCommands_Test(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "test", "-r", "libmotor/v0.3.0", "--can-run", "true", "-o", "shared=true")
	require.NoError(t, err)
	assert.Equal(t, "libmotor/v0.3.0", m.testOpts.Reference)
	assert.Equal(t, []string{"shared=true"}, m.testOpts.Options)
	require.NotNil(t, m.testOpts.CanRun)
	assert.True(t, *m.testOpts.CanRun)
}

func TestCommands_Inspect(t *testing.T) {
	out, err := execute(t, &mockApp{}, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "name: libmotor")
}

func TestCommands_Import(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "import", "mp-units/2.4.0", "/usr", "--type", "header-library", "--lib", "a", "--lib", "b")
	require.NoError(t, err)
	assert.Equal(t, app.ImportOptions{
		Reference:   "mp-units/2.4.0",
		Prefix:      "/usr",
		PackageType: domain.PackageTypeHeaderLibrary,
		Libs:        []string{"a", "b"},
	}, m.importOpts)

	_, err = execute(t, m, "import", "mp-units/2.4.0")
	require.Error(t, err)
}

func TestCommands_List(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "list", "libmotor")
	require.NoError(t, err)
	assert.Equal(t, "libmotor", m.listName)
}

func TestCommands_Upload(t *testing.T) {
	t.Run("wires target", func(t *testing.T) {
		m := &mockApp{}
		out, err := execute(t, m, "upload", "libmotor/v0.3.0", "--registry", "localhost:5000", "--plain-http", "-o", "shared=false")
		require.NoError(t, err)

		assert.Equal(t, "libmotor/v0.3.0", m.uploadRef)
		assert.Equal(t, domain.UploadTarget{Registry: "localhost:5000", PlainHTTP: true}, m.uploadOpts.Target)
		assert.Equal(t, []string{"shared=false"}, m.uploadOpts.Options)
		assert.Contains(t, out, "ghcr.io/acme/libmotor:v0.3.0-aa@sha256:1")
	})

	t.Run("requires registry", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "upload", "libmotor/v0.3.0")
		require.Error(t, err)
	})
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.CleanOptions
	}{
		{name: "default", args: []string{"clean"}, want: app.CleanOptions{}},
		{name: "tools", args: []string{"clean", "--tools"}, want: app.CleanOptions{Tools: true}},
		{name: "all", args: []string{"clean", "--all"}, want: app.CleanOptions{Packages: true, Sources: true, Tools: true}},
		{name: "reference", args: []string{"clean", "libmotor/v0.3.0"}, want: app.CleanOptions{Reference: "libmotor/v0.3.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockApp{}
			_, err := execute(t, m, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.cleanOpts)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
