package toolchain

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/nix"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the environment factory Graft node.
const NodeID graft.ID = "adapter.environment"

func init() {
	graft.Register(graft.Node[ports.EnvironmentFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{envconfig.NodeID, shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.EnvironmentFactory, error) {
			cfg, err := graft.Dep[*envconfig.Config](ctx)
			if err != nil {
				return nil, err
			}

			if cfg.Toolchain == envconfig.ToolchainNix {
				resolver, err := nix.NewResolver(cfg.NixCache)
				if err != nil {
					return nil, err
				}
				return nix.NewEnvFactory(resolver, cfg.EnvCachePath()), nil
			}

			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewHostEnvFactory(executor, log), nil
		},
	})
}
