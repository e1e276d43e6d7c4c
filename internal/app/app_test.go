package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type testApp struct {
	loader    *mocks.MockConfigLoader
	vcs       *mocks.MockVCS
	env       *mocks.MockEnvironmentFactory
	store     *mocks.MockPackageStore
	gen       *mocks.MockGenerator
	build     *mocks.MockBuildSystem
	fs        *mocks.MockFileSystem
	hasher    *mocks.MockHasher
	executor  *mocks.MockExecutor
	publisher *mocks.MockPublisher
	metrics   *mocks.MockMetrics
	logger    *mocks.MockLogger
	app       *app.App
}

var (
	workDir  = filepath.FromSlash("/work/libmotor")
	linuxX86 = domain.Settings{OS: domain.OSLinux, Arch: "x86_64", Compiler: "gcc", BuildType: "Release"}
	now      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctrl := gomock.NewController(t)

	ta := &testApp{
		loader:    mocks.NewMockConfigLoader(ctrl),
		vcs:       mocks.NewMockVCS(ctrl),
		env:       mocks.NewMockEnvironmentFactory(ctrl),
		store:     mocks.NewMockPackageStore(ctrl),
		gen:       mocks.NewMockGenerator(ctrl),
		build:     mocks.NewMockBuildSystem(ctrl),
		fs:        mocks.NewMockFileSystem(ctrl),
		hasher:    mocks.NewMockHasher(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		metrics:   mocks.NewMockMetrics(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}
	ta.app = app.New(app.Deps{
		Loader:      ta.loader,
		VCS:         ta.vcs,
		EnvFactory:  ta.env,
		Store:       ta.store,
		Generator:   ta.gen,
		BuildSystem: ta.build,
		FileSystem:  ta.fs,
		Hasher:      ta.hasher,
		Executor:    ta.executor,
		Publisher:   ta.publisher,
		Renderer:    linear.NewRenderer(io.Discard, io.Discard),
		Metrics:     ta.metrics,
		Logger:      ta.logger,
	}, app.Config{
		BuildType:      "Release",
		PackagesPath:   filepath.FromSlash("/home/kiln/p"),
		SourcesPath:    filepath.FromSlash("/home/kiln/s"),
		ToolCachePaths: []string{filepath.FromSlash("/home/kiln/cache/nixhub")},
	})
	ta.app.SetRunIDs(func() string { return "run-1" })
	ta.app.SetClock(func() time.Time { return now })

	ta.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	ta.metrics.EXPECT().ObserveStage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return ta
}

// settingsArgs pins the target settings so tests do not depend on the host.
func settingsArgs() []string {
	return []string{"os=Linux", "arch=x86_64", "compiler=gcc", "build_type=Release"}
}

func libmotorRecipe() *domain.Recipe {
	return &domain.Recipe{
		Name:            "libmotor",
		PackageType:     domain.PackageTypeLibrary,
		Description:     "pmdc motor control lib",
		DefaultOptions:  domain.DefaultOptions(),
		ExportsSources:  []string{"CMakeLists.txt", "src/*"},
		Generator:       domain.DefaultGenerator,
		CompileDatabase: domain.LibraryCompileDatabase,
		Libs:            []string{"libmotor"},
		Dir:             workDir,
	}
}

func (ta *testApp) expectRecipe(r *domain.Recipe) {
	ta.loader.EXPECT().DiscoverRoot(workDir).Return(workDir, nil)
	ta.loader.EXPECT().LoadRecipe(workDir).Return(r, nil)
}

func (ta *testApp) expectIdentity() {
	ta.vcs.EXPECT().Describe(gomock.Any(), workDir).Return("v0.3.0-1-gabc", nil)
	ta.vcs.EXPECT().Head(gomock.Any(), workDir).Return("abc123", nil)
}

func (ta *testApp) expectBuilds(n int) {
	ta.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(n)
	ta.build.EXPECT().Configure(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(n)
	ta.fs.EXPECT().CopyFile(domain.CompileDatabaseFileName, gomock.Any(), gomock.Any()).Return(true, nil).Times(n)
	ta.build.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(n)
}

func TestApp_Build(t *testing.T) {
	ta := newTestApp(t)
	ta.expectRecipe(libmotorRecipe())
	ta.expectIdentity()
	ta.expectBuilds(1)
	ta.metrics.EXPECT().Flush().Return(nil)

	res, err := ta.app.Build(context.Background(), workDir, app.BuildOptions{
		Settings: settingsArgs(),
		Options:  []string{"shared=true"},
	})
	require.NoError(t, err)

	assert.Equal(t, "v0.3.0", res.Identity.Version)
	assert.Equal(t, filepath.Join(workDir, "build", "Release"), res.Layout.BuildFolder)
	assert.True(t, res.Options.Enabled(domain.OptionShared))
	assert.False(t, res.Options.Has(domain.OptionFPIC))
	assert.Nil(t, res.Record)
}

func TestApp_Build_InvalidOverrides(t *testing.T) {
	ta := newTestApp(t)
	ta.expectRecipe(libmotorRecipe())

	_, err := ta.app.Build(context.Background(), workDir, app.BuildOptions{Options: []string{"shared=maybe"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOption))
}

func (ta *testApp) expectExport(recipe *domain.Recipe, exportDir string) {
	ta.store.EXPECT().SourceFolder(domain.MustParseReference("libmotor/v0.3.0"), "").Return(exportDir)
	ta.fs.EXPECT().RemoveAll(exportDir).Return(nil)
	ta.fs.EXPECT().ExportSources(workDir, recipe.ExportsSources, exportDir).
		Return([]string{"CMakeLists.txt", "src/motor.cpp"}, nil)
	ta.hasher.EXPECT().HashFiles(exportDir, []string{"CMakeLists.txt", "src/motor.cpp"}).Return("rev1", nil)
}

func TestApp_Create(t *testing.T) {
	ta := newTestApp(t)
	recipe := libmotorRecipe()
	ta.expectRecipe(recipe)

	testDir := filepath.Join(workDir, domain.TestPackageDirName)
	ta.loader.EXPECT().LoadTestRecipe(testDir).Return(&domain.TestRecipe{
		Generator:       domain.DefaultGenerator,
		CompileDatabase: domain.TestCompileDatabase,
		Dir:             testDir,
	}, nil)

	exportDir := filepath.FromSlash("/home/kiln/s/libmotor/v0.3.0")
	packageDir := filepath.FromSlash("/home/kiln/p/libmotor/v0.3.0/id")
	ta.expectIdentity()
	ta.expectExport(recipe, exportDir)

	ta.expectIdentity()
	ta.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	ta.build.EXPECT().Configure(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	ta.build.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	// The library compile database lands in the build folder of the export,
	// which outlives the run.
	ta.fs.EXPECT().CopyFile(domain.CompileDatabaseFileName, gomock.Any(), filepath.Join(exportDir, "build")).Return(true, nil)
	ta.fs.EXPECT().CopyFile(domain.CompileDatabaseFileName, gomock.Any(), filepath.Join(workDir, "build")).Return(true, nil)

	ta.store.EXPECT().PackageFolder(domain.MustParseReference("libmotor/v0.3.0"), gomock.Any()).Return(packageDir)
	ta.fs.EXPECT().RemoveAll(packageDir).Return(nil)
	ta.build.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), packageDir, gomock.Any(), gomock.Any()).Return(nil)
	ta.store.EXPECT().Put(gomock.Any()).Return(nil)
	ta.metrics.EXPECT().PackageCreated("built")

	// The host is declared unable to run the binaries, so the test binary is skipped.
	ta.metrics.EXPECT().TestSkipped()
	ta.metrics.EXPECT().Flush().Return(nil)

	canRun := false
	record, err := ta.app.Create(context.Background(), workDir, app.CreateOptions{
		BuildOptions: app.BuildOptions{Settings: settingsArgs()},
		CanRun:       &canRun,
	})
	require.NoError(t, err)

	assert.Equal(t, "rev1", record.RecipeRevision)
	assert.Equal(t, "run-1", record.RunID)
	assert.Equal(t, []string{"libmotor"}, record.Libs)
	assert.Equal(t, linuxX86, record.Settings)
}

func TestApp_Create_FailedBuildKeepsReachableFolder(t *testing.T) {
	ta := newTestApp(t)
	recipe := libmotorRecipe()
	recipe.Requires = []domain.Reference{domain.MustParseReference("mp-units/2.4.0")}
	ta.expectRecipe(recipe)

	exportDir := filepath.FromSlash("/home/kiln/s/libmotor/v0.3.0")
	ta.expectIdentity()
	ta.expectExport(recipe, exportDir)
	ta.expectIdentity()

	ta.env.EXPECT().GetEnvironment(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	ta.store.EXPECT().Find(domain.MustParseReference("mp-units/2.4.0"), gomock.Any()).Return(nil, nil)
	ta.metrics.EXPECT().Flush().Return(nil)

	// No further RemoveAll: the folder is named after the reference, so
	// `clean libmotor/v0.3.0` reaches it.
	_, err := ta.app.Create(context.Background(), workDir, app.CreateOptions{
		BuildOptions: app.BuildOptions{Settings: settingsArgs()},
		NoTest:       true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDependencyNotFound))
}

func TestApp_Create_NoExportedSources(t *testing.T) {
	ta := newTestApp(t)
	recipe := libmotorRecipe()
	ta.expectRecipe(recipe)
	ta.expectIdentity()

	exportDir := filepath.FromSlash("/home/kiln/s/libmotor/v0.3.0")
	ta.store.EXPECT().SourceFolder(gomock.Any(), "").Return(exportDir)
	ta.fs.EXPECT().ExportSources(workDir, recipe.ExportsSources, exportDir).Return(nil, nil)
	// Cleared before the export and removed again once it turned out empty.
	ta.fs.EXPECT().RemoveAll(exportDir).Return(nil).Times(2)

	_, err := ta.app.Create(context.Background(), workDir, app.CreateOptions{NoTest: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoExportedSources))
}

func TestApp_Test_PackageNotCached(t *testing.T) {
	ta := newTestApp(t)
	ta.expectRecipe(libmotorRecipe())
	ta.loader.EXPECT().LoadTestRecipe(gomock.Any()).Return(&domain.TestRecipe{}, nil)
	ta.store.EXPECT().FindMatching(domain.MustParseReference("libmotor/v0.2.0"), linuxX86,
		map[string]bool{"shared": false, "fPIC": true}).Return(nil, nil)

	err := ta.app.Test(context.Background(), workDir, app.TestOptions{
		Reference: "libmotor/v0.2.0",
		Settings:  settingsArgs(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
}

func TestApp_Test_SelectsBinaryByOptions(t *testing.T) {
	ta := newTestApp(t)
	ta.expectRecipe(libmotorRecipe())
	ta.loader.EXPECT().LoadTestRecipe(gomock.Any()).Return(&domain.TestRecipe{}, nil)
	// fPIC is pruned for a shared build, so only shared is matched.
	ta.store.EXPECT().FindMatching(domain.MustParseReference("libmotor/v0.2.0"), linuxX86,
		map[string]bool{"shared": true}).Return(nil, nil)

	err := ta.app.Test(context.Background(), workDir, app.TestOptions{
		Reference: "libmotor/v0.2.0",
		Settings:  settingsArgs(),
		Options:   []string{"shared=true"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
}

func TestApp_Import(t *testing.T) {
	t.Run("registers prefix", func(t *testing.T) {
		ta := newTestApp(t)
		prefix := t.TempDir()

		var stored *domain.PackageRecord
		ta.fs.EXPECT().Exists(prefix).Return(true)
		ta.store.EXPECT().Put(gomock.Any()).Do(func(r *domain.PackageRecord) { stored = r }).Return(nil)
		ta.metrics.EXPECT().PackageCreated("imported")
		ta.metrics.EXPECT().Flush().Return(nil)

		rec, err := ta.app.Import(context.Background(), app.ImportOptions{
			Reference:   "mp-units/2.4.0",
			Prefix:      prefix,
			PackageType: domain.PackageTypeHeaderLibrary,
		})
		require.NoError(t, err)
		assert.Same(t, stored, rec)
		assert.True(t, rec.Imported)
		assert.Equal(t, prefix, rec.PackageFolder)
		assert.Equal(t, now, rec.CreatedAt)
		assert.True(t, rec.Matches(domain.Settings{OS: domain.OSWindows}))
	})

	t.Run("missing prefix", func(t *testing.T) {
		ta := newTestApp(t)
		ta.fs.EXPECT().Exists(gomock.Any()).Return(false)

		_, err := ta.app.Import(context.Background(), app.ImportOptions{
			Reference: "mp-units/2.4.0",
			Prefix:    filepath.FromSlash("/does/not/exist"),
		})
		assert.True(t, errors.Is(err, domain.ErrImportPrefixNotFound))
	})
}

func TestApp_List(t *testing.T) {
	ta := newTestApp(t)
	ta.store.EXPECT().List().Return([]*domain.PackageRecord{
		{
			Reference:   domain.MustParseReference("libmotor/v0.3.0"),
			PackageID:   "00000000000000aa",
			PackageType: domain.PackageTypeLibrary,
			Settings:    linuxX86,
			Options:     map[string]bool{"shared": false, "fPIC": true},
		},
		{
			Reference:   domain.MustParseReference("mp-units/2.4.0"),
			PackageID:   "00000000000000bb",
			PackageType: domain.PackageTypeHeaderLibrary,
			Imported:    true,
		},
	}, nil).Times(2)

	var buf bytes.Buffer
	require.NoError(t, ta.app.List(context.Background(), "", &buf))
	assert.Contains(t, buf.String(), "libmotor/v0.3.0")
	assert.Contains(t, buf.String(), "fPIC=true,shared=false")
	assert.Contains(t, buf.String(), "imported")

	buf.Reset()
	require.NoError(t, ta.app.List(context.Background(), "mp-units", &buf))
	assert.NotContains(t, buf.String(), "libmotor")
}

func TestApp_Upload(t *testing.T) {
	record := &domain.PackageRecord{
		Reference: domain.MustParseReference("libmotor/v0.3.0"),
		PackageID: "00000000000000aa",
		Settings:  linuxX86,
	}

	t.Run("defaults repository to package name", func(t *testing.T) {
		ta := newTestApp(t)
		ta.store.EXPECT().FindMatching(record.Reference, linuxX86, map[string]bool{}).Return(record, nil)
		ta.publisher.EXPECT().Push(gomock.Any(), record, domain.UploadTarget{
			Registry:   "localhost:5000",
			Repository: "libmotor",
			PlainHTTP:  true,
		}).Return(&domain.UploadResult{Reference: "localhost:5000/libmotor:v0.3.0-00000000000000aa", Digest: "sha256:1"}, nil)

		res, err := ta.app.Upload(context.Background(), "libmotor/v0.3.0", app.UploadOptions{
			Settings: settingsArgs(),
			Target:   domain.UploadTarget{Registry: "localhost:5000", PlainHTTP: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "sha256:1", res.Digest)
	})

	t.Run("package not cached", func(t *testing.T) {
		ta := newTestApp(t)
		ta.store.EXPECT().FindMatching(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		_, err := ta.app.Upload(context.Background(), "libmotor/v0.3.0", app.UploadOptions{Settings: settingsArgs()})
		assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
	})

	t.Run("selects binary by options", func(t *testing.T) {
		ta := newTestApp(t)
		shared := &domain.PackageRecord{
			Reference: record.Reference,
			PackageID: "00000000000000bb",
			Settings:  linuxX86,
			Options:   map[string]bool{"shared": true},
		}
		ta.store.EXPECT().FindMatching(record.Reference, linuxX86, map[string]bool{"shared": true}).Return(shared, nil)
		ta.publisher.EXPECT().Push(gomock.Any(), shared, gomock.Any()).
			Return(&domain.UploadResult{Reference: "localhost:5000/libmotor:v0.3.0-00000000000000bb", Digest: "sha256:2"}, nil)

		res, err := ta.app.Upload(context.Background(), "libmotor/v0.3.0", app.UploadOptions{
			Settings: settingsArgs(),
			Options:  []string{"shared=true"},
			Target:   domain.UploadTarget{Registry: "localhost:5000"},
		})
		require.NoError(t, err)
		assert.Equal(t, "sha256:2", res.Digest)
	})

	t.Run("invalid option value", func(t *testing.T) {
		ta := newTestApp(t)

		_, err := ta.app.Upload(context.Background(), "libmotor/v0.3.0", app.UploadOptions{
			Settings: settingsArgs(),
			Options:  []string{"shared=yes"},
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidOption))
	})
}

func TestApp_Clean(t *testing.T) {
	t.Run("default removes packages and sources", func(t *testing.T) {
		ta := newTestApp(t)
		ta.fs.EXPECT().RemoveAll(filepath.FromSlash("/home/kiln/p")).Return(nil)
		ta.fs.EXPECT().RemoveAll(filepath.FromSlash("/home/kiln/s")).Return(nil)

		require.NoError(t, ta.app.Clean(context.Background(), app.CleanOptions{}))
	})

	t.Run("tools only", func(t *testing.T) {
		ta := newTestApp(t)
		ta.fs.EXPECT().RemoveAll(filepath.FromSlash("/home/kiln/cache/nixhub")).Return(errors.New("busy"))

		err := ta.app.Clean(context.Background(), app.CleanOptions{Tools: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "busy")
	})

	t.Run("single reference", func(t *testing.T) {
		ta := newTestApp(t)
		ta.store.EXPECT().Remove(domain.MustParseReference("libmotor/v0.3.0")).Return(2, nil)

		require.NoError(t, ta.app.Clean(context.Background(), app.CleanOptions{Reference: "libmotor/v0.3.0"}))
	})
}

func TestApp_Inspect(t *testing.T) {
	ta := newTestApp(t)
	ta.expectRecipe(libmotorRecipe())
	ta.fs.EXPECT().Exists(filepath.Join(workDir, domain.TestPackageDirName, domain.RecipeFileName)).Return(true)
	ta.expectIdentity()

	var buf bytes.Buffer
	err := ta.app.Inspect(context.Background(), workDir, app.BuildOptions{Settings: settingsArgs()}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "name: libmotor")
	assert.Contains(t, out, "version: v0.3.0")
	assert.Contains(t, out, "fPIC: true")
	assert.Contains(t, out, "testPackage: true")
	assert.Contains(t, out, "- libmotor")
}
