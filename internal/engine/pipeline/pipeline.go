// Package pipeline runs the library and test recipe flows as ordered stages.
package pipeline

import (
	"context"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Flow names.
const (
	FlowLibrary = "library"
	FlowTest    = "test"
)

// Stage names.
const (
	StageResolveIdentity     = "resolve identity"
	StageDeclareRequirements = "declare requirements"
	StageConfigureOptions    = "configure options"
	StageLayout              = "layout"
	StageResolveDependencies = "resolve dependencies"
	StageGenerate            = "generate"
	StageBuild               = "build"
	StagePackage             = "package"
	StageTest                = "test"
)

// Span attribute keys.
const (
	AttrFlow    = ports.AttrFlow
	AttrRunID   = ports.AttrRunID
	AttrVersion = ports.AttrVersion
	AttrSkipped = ports.AttrSkipped
)

// Stage is a single step of a flow. Output of external commands is written to the span.
type Stage struct {
	Name string
	Run  func(ctx context.Context, span ports.Span) error
}

// Pipeline executes recipe flows against the configured adapters.
type Pipeline struct {
	vcs        ports.VCS
	envFactory ports.EnvironmentFactory
	store      ports.PackageStore
	generator  ports.Generator
	build      ports.BuildSystem
	fs         ports.FileSystem
	executor   ports.Executor
	tracer     ports.Tracer
	metrics    ports.Metrics
	logger     ports.Logger
	pathSep    string
	now        func() time.Time
}

// Deps groups the adapters a Pipeline runs against.
type Deps struct {
	VCS         ports.VCS
	EnvFactory  ports.EnvironmentFactory
	Store       ports.PackageStore
	Generator   ports.Generator
	BuildSystem ports.BuildSystem
	FileSystem  ports.FileSystem
	Executor    ports.Executor
	Tracer      ports.Tracer
	Metrics     ports.Metrics
	Logger      ports.Logger
}

// New creates a Pipeline. pathSep joins search paths in run environments.
func New(d Deps, pathSep string) *Pipeline {
	return &Pipeline{
		vcs:        d.VCS,
		envFactory: d.EnvFactory,
		store:      d.Store,
		generator:  d.Generator,
		build:      d.BuildSystem,
		fs:         d.FileSystem,
		executor:   d.Executor,
		tracer:     d.Tracer,
		metrics:    d.Metrics,
		logger:     d.Logger,
		pathSep:    pathSep,
		now:        time.Now,
	}
}

// run executes stages in order. The first failing stage aborts the flow.
func (p *Pipeline) run(ctx context.Context, flow, runID string, stages []Stage) error {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	p.tracer.EmitPlan(ctx, flow, names)

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		stageCtx, span := p.tracer.Start(ctx, stage.Name,
			ports.WithAttribute(AttrFlow, flow),
			ports.WithAttribute(AttrRunID, runID),
		)
		start := p.now()
		err := stage.Run(stageCtx, span)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		p.metrics.ObserveStage(flow, stage.Name, p.now().Sub(start), err)

		if err != nil {
			return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrPipelineFailed.Error()), "flow", flow), "stage", stage.Name)
		}
	}
	return nil
}

// resolveLibraries finds a cached binary for every library requirement.
// Records in known are used as is, which lets a test flow consume the binary
// it was started for.
func (p *Pipeline) resolveLibraries(
	reqs []domain.Requirement,
	settings domain.Settings,
	known ...*domain.PackageRecord,
) ([]*domain.PackageRecord, error) {
	records := make([]*domain.PackageRecord, 0, len(reqs))

outer:
	for _, req := range reqs {
		for _, k := range known {
			if k != nil && k.Reference == req.Ref {
				records = append(records, k)
				continue outer
			}
		}

		rec, err := p.store.Find(req.Ref, settings)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrDependencyNotFound, "resolve "+req.Ref.String()),
				"reference", req.Ref.String()), "settings", settings.String())
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *Pipeline) toolEnvironment(ctx context.Context, deps *domain.DependencySet) ([]string, error) {
	tools := domain.References(deps.Tools())
	if len(tools) == 0 {
		return nil, nil
	}
	return p.envFactory.GetEnvironment(ctx, tools)
}

// copyCompileDatabase copies compile_commands.json to the configured target.
// A missing database only warns; a failed copy is fatal.
func (p *Pipeline) copyCompileDatabase(layout domain.BuildLayout, target domain.CompileDatabaseTarget) error {
	dst := target.Resolve(layout)
	copied, err := p.fs.CopyFile(domain.CompileDatabaseFileName, layout.BuildFolder, dst)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCompileDatabaseCopyFailed.Error()), "destination", dst)
	}
	if !copied {
		p.logger.Warn(domain.CompileDatabaseFileName + " not found in " + layout.BuildFolder)
	}
	return nil
}
