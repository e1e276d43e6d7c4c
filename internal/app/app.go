// Package app implements the application layer for kiln.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Deps groups the adapters the application runs against.
type Deps struct {
	Loader      ports.ConfigLoader
	VCS         ports.VCS
	EnvFactory  ports.EnvironmentFactory
	Store       ports.PackageStore
	Generator   ports.Generator
	BuildSystem ports.BuildSystem
	FileSystem  ports.FileSystem
	Hasher      ports.Hasher
	Executor    ports.Executor
	Publisher   ports.Publisher
	Renderer    ports.Renderer
	Metrics     ports.Metrics
	Logger      ports.Logger
}

// Config holds the process settings the application needs.
type Config struct {
	// BuildType is the default build_type setting.
	BuildType    string
	PackagesPath string
	SourcesPath  string
	// ToolCachePaths are removed by Clean with Tools set.
	ToolCachePaths []string
}

// App represents the main application logic.
type App struct {
	d        Deps
	cfg      Config
	pathSep  string
	newRunID func() string
	now      func() time.Time
}

// New creates a new App instance.
func New(d Deps, cfg Config) *App {
	return &App{
		d:        d,
		cfg:      cfg,
		pathSep:  string(os.PathListSeparator),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

// SettingsFor applies key=value overrides to the host settings.
func (a *App) SettingsFor(overrides []string) (domain.Settings, error) {
	kv, err := domain.ParseKeyValues(overrides)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.HostSettings(a.cfg.BuildType).WithOverrides(kv)
}

// runFlows runs fn with a pipeline whose spans feed the renderer.
// Renderer and flows run concurrently; the renderer stops once fn returns.
func (a *App) runFlows(ctx context.Context, fn func(ctx context.Context, p *pipeline.Pipeline) error) error {
	renderer := a.d.Renderer

	setupOTel(telemetry.NewBridge(renderer))
	tracer := telemetry.NewOTelTracer("kiln").WithRenderer(renderer)

	p := pipeline.New(pipeline.Deps{
		VCS:         a.d.VCS,
		EnvFactory:  a.d.EnvFactory,
		Store:       a.d.Store,
		Generator:   a.d.Generator,
		BuildSystem: a.d.BuildSystem,
		FileSystem:  a.d.FileSystem,
		Executor:    a.d.Executor,
		Tracer:      tracer,
		Metrics:     a.d.Metrics,
		Logger:      a.d.Logger,
	}, a.pathSep)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = zerr.With(zerr.New("recipe flow panicked"), "panic", fmt.Sprint(r))
			}
			_ = tracer.Shutdown(context.WithoutCancel(ctx))
			_ = renderer.Stop()
		}()
		return fn(ctx, p)
	})

	err := g.Wait()
	if flushErr := a.d.Metrics.Flush(); flushErr != nil {
		a.d.Logger.Warn("failed to write metrics: " + flushErr.Error())
	}
	return err
}

// setupOTel configures the OpenTelemetry SDK with the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
}
