package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/adapters/cmake"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/git"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/oci"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/toolchain"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			envconfig.NodeID,
			config.NodeID,
			git.NodeID,
			toolchain.NodeID,
			cas.NodeID,
			cmake.GeneratorNodeID,
			cmake.BuildSystemNodeID,
			fs.FileSystemNodeID,
			fs.HasherNodeID,
			shell.NodeID,
			oci.NodeID,
			tui.NodeID,
			telemetry.MetricsNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

//nolint:cyclop // one lookup per dependency
func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*envconfig.Config](ctx)
	if err != nil {
		return nil, err
	}

	var d Deps
	if d.Loader, err = graft.Dep[ports.ConfigLoader](ctx); err != nil {
		return nil, err
	}
	if d.VCS, err = graft.Dep[ports.VCS](ctx); err != nil {
		return nil, err
	}
	if d.EnvFactory, err = graft.Dep[ports.EnvironmentFactory](ctx); err != nil {
		return nil, err
	}
	if d.Store, err = graft.Dep[ports.PackageStore](ctx); err != nil {
		return nil, err
	}
	if d.Generator, err = graft.Dep[ports.Generator](ctx); err != nil {
		return nil, err
	}
	if d.BuildSystem, err = graft.Dep[ports.BuildSystem](ctx); err != nil {
		return nil, err
	}
	if d.FileSystem, err = graft.Dep[ports.FileSystem](ctx); err != nil {
		return nil, err
	}
	if d.Hasher, err = graft.Dep[ports.Hasher](ctx); err != nil {
		return nil, err
	}
	if d.Executor, err = graft.Dep[ports.Executor](ctx); err != nil {
		return nil, err
	}
	if d.Publisher, err = graft.Dep[ports.Publisher](ctx); err != nil {
		return nil, err
	}
	if d.Renderer, err = graft.Dep[ports.Renderer](ctx); err != nil {
		return nil, err
	}
	if d.Metrics, err = graft.Dep[ports.Metrics](ctx); err != nil {
		return nil, err
	}
	if d.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}

	return New(d, Config{
		BuildType:      cfg.BuildType,
		PackagesPath:   cfg.PackagesPath(),
		SourcesPath:    cfg.SourcesPath(),
		ToolCachePaths: []string{cfg.NixCache, cfg.EnvCachePath()},
	}), nil
}
