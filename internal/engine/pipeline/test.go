package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// TestRequest describes one run of the test flow.
type TestRequest struct {
	Recipe   *domain.TestRecipe
	Tested   *domain.PackageRecord
	Settings domain.Settings
	// CanRun is false when the host cannot execute binaries built for Settings.
	CanRun bool
	RunID  string
}

type testRun struct {
	req     TestRequest
	deps    *domain.DependencySet
	layout  domain.BuildLayout
	libs    []*domain.PackageRecord
	toolEnv []string
	config  domain.BuildConfig
}

// RunTest builds the test package against the tested binary and runs its test executable.
func (p *Pipeline) RunTest(ctx context.Context, req TestRequest) error {
	if req.Tested == nil {
		return zerr.Wrap(domain.ErrPackageNotFound, "test flow needs a tested package")
	}
	r := &testRun{req: req}

	stages := []Stage{
		{Name: StageDeclareRequirements, Run: func(context.Context, ports.Span) error {
			deps, err := req.Recipe.Requirements(req.Tested.Reference, req.Tested.Requires)
			r.deps = deps
			return err
		}},
		{Name: StageLayout, Run: func(context.Context, ports.Span) error {
			r.layout = domain.NewBuildLayout(req.Recipe.Dir, req.Recipe.Generator, req.Settings.BuildType)
			return nil
		}},
		{Name: StageResolveDependencies, Run: func(ctx context.Context, _ ports.Span) error {
			env, err := p.toolEnvironment(ctx, r.deps)
			if err != nil {
				return err
			}
			r.toolEnv = env
			r.libs, err = p.resolveLibraries(r.deps.Libraries(), req.Settings, req.Tested)
			return err
		}},
		{Name: StageGenerate, Run: func(ctx context.Context, _ ports.Span) error {
			r.config = domain.NewBuildConfig(req.Recipe.Generator, req.Settings, domain.OptionSet{},
				req.Recipe.Metadata(req.Tested))
			return p.generator.Generate(ctx, r.layout, r.config, r.libs)
		}},
		{Name: StageBuild, Run: func(ctx context.Context, span ports.Span) error {
			return p.configureAndBuild(ctx, span, r.layout, r.config, r.toolEnv, req.Recipe.CompileDatabase)
		}},
		{Name: StageTest, Run: func(ctx context.Context, span ports.Span) error {
			return p.runTestBinary(ctx, span, r)
		}},
	}

	return p.run(ctx, FlowTest, req.RunID, stages)
}

func (p *Pipeline) runTestBinary(ctx context.Context, span ports.Span, r *testRun) error {
	if !r.req.CanRun {
		span.SetAttribute(AttrSkipped, true)
		p.metrics.TestSkipped()
		p.logger.Info("skipping tests: host cannot run binaries built for " + r.req.Settings.String())
		return nil
	}

	binary := filepath.Join(r.layout.BinFolder, r.req.Recipe.BinaryName())
	task := &domain.Task{
		Name:        domain.RunEnvLabel,
		Command:     []string{binary},
		Environment: domain.RunEnvironment(r.libs, r.req.Settings, p.pathSep),
		WorkingDir:  r.layout.BinFolder,
	}

	if err := p.executor.Execute(ctx, task, r.toolEnv, span, span); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrTestFailed, err), "run test binary"), "binary", binary)
	}
	return nil
}
