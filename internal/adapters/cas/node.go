package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the package store Graft node.
const NodeID graft.ID = "adapter.package_store"

func init() {
	graft.Register(graft.Node[ports.PackageStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{envconfig.NodeID},
		Run: func(ctx context.Context) (ports.PackageStore, error) {
			cfg, err := graft.Dep[*envconfig.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(cfg.PackagesPath(), cfg.SourcesPath()), nil
		},
	})
}
