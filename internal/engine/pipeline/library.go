package pipeline

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// LibraryRequest describes one run of the library flow.
type LibraryRequest struct {
	Recipe *domain.Recipe
	// SourceFolder is where the build happens: the recipe folder for an
	// in-place build or the exported sources for create.
	SourceFolder    string
	Settings        domain.Settings
	OptionOverrides map[string]bool
	// Package installs the build into the cache and records it.
	Package        bool
	RecipeRevision string
	RunID          string
}

// LibraryResult is what a library flow resolved and produced.
type LibraryResult struct {
	Identity     domain.PackageIdentity
	Options      domain.OptionSet
	Layout       domain.BuildLayout
	Dependencies []*domain.PackageRecord
	Record       *domain.PackageRecord
}

type libraryRun struct {
	req     LibraryRequest
	result  LibraryResult
	deps    *domain.DependencySet
	toolEnv []string
	config  domain.BuildConfig
}

// RunLibrary builds the recipe and, when requested, packages it into the cache.
func (p *Pipeline) RunLibrary(ctx context.Context, req LibraryRequest) (*LibraryResult, error) {
	r := &libraryRun{req: req}

	stages := []Stage{
		{Name: StageResolveIdentity, Run: func(ctx context.Context, span ports.Span) error {
			return p.resolveIdentity(ctx, span, r)
		}},
		{Name: StageDeclareRequirements, Run: func(context.Context, ports.Span) error {
			deps, err := req.Recipe.Requirements()
			r.deps = deps
			return err
		}},
		{Name: StageConfigureOptions, Run: func(_ context.Context, span ports.Span) error {
			r.result.Options = domain.PruneOptions(req.Recipe.DefaultOptions, req.Settings, req.OptionOverrides)
			span.SetAttribute("kiln.options", r.result.Options.String())
			return nil
		}},
		{Name: StageLayout, Run: func(context.Context, ports.Span) error {
			r.result.Layout = domain.NewBuildLayout(req.SourceFolder, req.Recipe.Generator, req.Settings.BuildType)
			return nil
		}},
		{Name: StageResolveDependencies, Run: func(ctx context.Context, _ ports.Span) error {
			env, err := p.toolEnvironment(ctx, r.deps)
			if err != nil {
				return err
			}
			r.toolEnv = env
			r.result.Dependencies, err = p.resolveLibraries(r.deps.Libraries(), req.Settings)
			return err
		}},
		{Name: StageGenerate, Run: func(ctx context.Context, _ ports.Span) error {
			r.config = domain.NewBuildConfig(req.Recipe.Generator, req.Settings, r.result.Options,
				req.Recipe.Metadata(r.result.Identity))
			return p.generator.Generate(ctx, r.result.Layout, r.config, r.result.Dependencies)
		}},
		{Name: StageBuild, Run: func(ctx context.Context, span ports.Span) error {
			return p.configureAndBuild(ctx, span, r.result.Layout, r.config, r.toolEnv, req.Recipe.CompileDatabase)
		}},
	}

	if req.Package {
		stages = append(stages, Stage{Name: StagePackage, Run: func(ctx context.Context, span ports.Span) error {
			return p.packageLibrary(ctx, span, r)
		}})
	}

	if err := p.run(ctx, FlowLibrary, req.RunID, stages); err != nil {
		return nil, err
	}
	return &r.result, nil
}

func (p *Pipeline) resolveIdentity(ctx context.Context, span ports.Span, r *libraryRun) error {
	dir := r.req.Recipe.Dir

	describe, err := p.vcs.Describe(ctx, dir)
	if err != nil {
		return err
	}
	commit, err := p.vcs.Head(ctx, dir)
	if err != nil {
		return err
	}

	id, err := domain.NewIdentity(r.req.Recipe.Name, describe, commit)
	if err != nil {
		return zerr.With(err, "dir", dir)
	}
	if !id.IsSemver() {
		p.logger.Warn("version " + id.Version + " of " + id.Name + " is not a semantic version")
	}

	span.SetAttribute(AttrVersion, id.Reference().String())
	r.result.Identity = id
	return nil
}

func (p *Pipeline) configureAndBuild(
	ctx context.Context,
	span ports.Span,
	layout domain.BuildLayout,
	cfg domain.BuildConfig,
	env []string,
	compileDB domain.CompileDatabaseTarget,
) error {
	if err := p.build.Configure(ctx, layout, cfg, env, span); err != nil {
		return err
	}
	if err := p.copyCompileDatabase(layout, compileDB); err != nil {
		return err
	}
	return p.build.Build(ctx, layout, cfg, env, span)
}

func (p *Pipeline) packageLibrary(ctx context.Context, span ports.Span, r *libraryRun) error {
	recipe := r.req.Recipe
	ref := r.result.Identity.Reference()
	libs := domain.References(r.deps.Libraries())

	packageID := domain.ComputePackageID(r.req.Settings, r.result.Options, libs, recipe.IsHeaderOnly())
	folder := p.store.PackageFolder(ref, packageID)
	span.SetAttribute("kiln.package_id", packageID)

	if err := p.fs.RemoveAll(folder); err != nil {
		return zerr.With(zerr.Wrap(err, "clear package folder"), "folder", folder)
	}
	if err := p.build.Install(ctx, r.result.Layout, r.config, folder, r.toolEnv, span); err != nil {
		return err
	}

	record := &domain.PackageRecord{
		Reference:      ref,
		PackageID:      packageID,
		RecipeRevision: r.req.RecipeRevision,
		Commit:         r.result.Identity.Commit,
		Description:    recipe.Description,
		PackageType:    recipe.PackageType,
		Settings:       r.req.Settings,
		Options:        r.result.Options.Map(),
		Requires:       libs,
		Libs:           recipe.Libs,
		IncludeDirs:    domain.DefaultIncludeDirs,
		LibDirs:        domain.DefaultLibDirs,
		BinDirs:        domain.DefaultBinDirs,
		PackageFolder:  folder,
		RunID:          r.req.RunID,
		CreatedAt:      p.now().UTC(),
	}
	if err := p.store.Put(record); err != nil {
		return err
	}

	p.metrics.PackageCreated("built")
	r.result.Record = record
	return nil
}
