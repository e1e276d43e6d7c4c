package app

import (
	"context"
	"errors"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// BuildOptions configures a library build.
type BuildOptions struct {
	// Settings are key=value overrides of the host settings.
	Settings []string
	// Options are name=value overrides of the recipe options.
	Options []string
}

// CreateOptions configures Create.
type CreateOptions struct {
	BuildOptions
	// CanRun overrides whether the host can run the test binary. Nil detects it.
	CanRun *bool
	NoTest bool
}

// TestOptions configures Test.
type TestOptions struct {
	// Reference selects the tested package. Empty resolves it from version control.
	Reference string
	Settings  []string
	// Options selects the tested binary among those built for the settings,
	// as name=value overrides of the recipe defaults.
	Options []string
	CanRun  *bool
}

type request struct {
	recipe    *domain.Recipe
	settings  domain.Settings
	overrides map[string]bool
}

func (a *App) prepare(dir string, opts BuildOptions) (*request, error) {
	root, err := a.d.Loader.DiscoverRoot(dir)
	if err != nil {
		return nil, err
	}
	recipe, err := a.d.Loader.LoadRecipe(root)
	if err != nil {
		return nil, err
	}
	settings, err := a.SettingsFor(opts.Settings)
	if err != nil {
		return nil, err
	}
	overrides, err := domain.ParseOptionOverrides(opts.Options)
	if err != nil {
		return nil, err
	}
	return &request{recipe: recipe, settings: settings, overrides: overrides}, nil
}

// Build runs the library flow in place, without packaging.
func (a *App) Build(ctx context.Context, dir string, opts BuildOptions) (*pipeline.LibraryResult, error) {
	req, err := a.prepare(dir, opts)
	if err != nil {
		return nil, err
	}

	var result *pipeline.LibraryResult
	err = a.runFlows(ctx, func(ctx context.Context, p *pipeline.Pipeline) error {
		res, err := p.RunLibrary(ctx, pipeline.LibraryRequest{
			Recipe:          req.recipe,
			SourceFolder:    req.recipe.Dir,
			Settings:        req.settings,
			OptionOverrides: req.overrides,
			RunID:           a.newRunID(),
		})
		result = res
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Create exports the recipe sources into the cache, builds and packages them,
// then runs the test package when one exists. The export folder is keyed by
// the resolved reference and doubles as the build folder, so the build tree
// and its compile database stay after the run and `clean <ref>` removes them.
func (a *App) Create(ctx context.Context, dir string, opts CreateOptions) (*domain.PackageRecord, error) {
	req, err := a.prepare(dir, opts.BuildOptions)
	if err != nil {
		return nil, err
	}

	var testRecipe *domain.TestRecipe
	if !opts.NoTest {
		testRecipe, err = a.loadTestRecipe(req.recipe)
		if err != nil {
			return nil, err
		}
	}

	ref, err := a.testedReference(ctx, req.recipe, "")
	if err != nil {
		return nil, err
	}

	runID := a.newRunID()
	exportDir := a.d.Store.SourceFolder(ref, "")
	revision, err := a.exportSources(req.recipe, exportDir)
	if err != nil {
		return nil, err
	}

	var record *domain.PackageRecord
	err = a.runFlows(ctx, func(ctx context.Context, p *pipeline.Pipeline) error {
		res, err := p.RunLibrary(ctx, pipeline.LibraryRequest{
			Recipe:          req.recipe,
			SourceFolder:    exportDir,
			Settings:        req.settings,
			OptionOverrides: req.overrides,
			Package:         true,
			RecipeRevision:  revision,
			RunID:           runID,
		})
		if err != nil {
			return err
		}
		record = res.Record

		if testRecipe == nil {
			return nil
		}
		return p.RunTest(ctx, pipeline.TestRequest{
			Recipe:   testRecipe,
			Tested:   record,
			Settings: req.settings,
			CanRun:   a.canRun(req.settings, opts.CanRun),
			RunID:    runID,
		})
	})
	if err != nil {
		a.d.Logger.Info("build folder of " + ref.String() + " kept at " + exportDir)
		return nil, err
	}

	a.d.Logger.Info("created " + record.Reference.String() + ":" + record.PackageID)
	return record, nil
}

// Test runs the test package of the recipe against a cached package.
func (a *App) Test(ctx context.Context, dir string, opts TestOptions) error {
	req, err := a.prepare(dir, BuildOptions{Settings: opts.Settings, Options: opts.Options})
	if err != nil {
		return err
	}

	testRecipe, err := a.d.Loader.LoadTestRecipe(req.recipe.TestPackageDir())
	if err != nil {
		return err
	}

	ref, err := a.testedReference(ctx, req.recipe, opts.Reference)
	if err != nil {
		return err
	}
	options := domain.PruneOptions(req.recipe.DefaultOptions, req.settings, req.overrides)
	tested, err := a.d.Store.FindMatching(ref, req.settings, options.Map())
	if err != nil {
		return err
	}
	if tested == nil {
		return zerr.With(zerr.With(zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "find tested package"),
			"reference", ref.String()), "settings", req.settings.String()), "options", options.String())
	}

	return a.runFlows(ctx, func(ctx context.Context, p *pipeline.Pipeline) error {
		return p.RunTest(ctx, pipeline.TestRequest{
			Recipe:   testRecipe,
			Tested:   tested,
			Settings: req.settings,
			CanRun:   a.canRun(req.settings, opts.CanRun),
			RunID:    a.newRunID(),
		})
	})
}

// loadTestRecipe returns nil when the recipe has no test package.
func (a *App) loadTestRecipe(recipe *domain.Recipe) (*domain.TestRecipe, error) {
	tr, err := a.d.Loader.LoadTestRecipe(recipe.TestPackageDir())
	if errors.Is(err, domain.ErrTestRecipeNotFound) {
		a.d.Logger.Info("no test package found, skipping tests")
		return nil, nil
	}
	return tr, err
}

// exportSources replaces the content of dir with the exported sources of
// recipe and returns the recipe revision hashed from them. A failed export
// leaves no folder behind.
func (a *App) exportSources(recipe *domain.Recipe, dir string) (revision string, err error) {
	if err := a.d.FileSystem.RemoveAll(dir); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrExportFailed.Error()), "destination", dir)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := a.d.FileSystem.RemoveAll(dir); rmErr != nil {
			a.d.Logger.Warn("failed to remove exported sources: " + rmErr.Error())
		}
	}()

	files, err := a.d.FileSystem.ExportSources(recipe.Dir, recipe.ExportsSources, dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrExportFailed.Error()), "destination", dir)
	}
	if len(files) == 0 {
		return "", zerr.With(zerr.Wrap(domain.ErrNoExportedSources, "export sources"), "recipe", recipe.Dir)
	}

	return a.d.Hasher.HashFiles(dir, files)
}

func (a *App) testedReference(ctx context.Context, recipe *domain.Recipe, explicit string) (domain.Reference, error) {
	if explicit != "" {
		return domain.ParseReference(explicit)
	}

	describe, err := a.d.VCS.Describe(ctx, recipe.Dir)
	if err != nil {
		return domain.Reference{}, err
	}
	commit, err := a.d.VCS.Head(ctx, recipe.Dir)
	if err != nil {
		return domain.Reference{}, err
	}
	id, err := domain.NewIdentity(recipe.Name, describe, commit)
	if err != nil {
		return domain.Reference{}, err
	}
	return id.Reference(), nil
}

func (a *App) canRun(target domain.Settings, override *bool) bool {
	return domain.CanRun(domain.HostSettings(a.cfg.BuildType), target, override)
}
