package cmake

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// GeneratorNodeID is the unique identifier for the CMake file generator Graft node.
	GeneratorNodeID graft.ID = "adapter.generator"
	// BuildSystemNodeID is the unique identifier for the cmake build system Graft node.
	BuildSystemNodeID graft.ID = "adapter.build_system"
)

func init() {
	graft.Register(graft.Node[ports.Generator]{
		ID:        GeneratorNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.Generator, error) {
			return NewGenerator(), nil
		},
	})

	graft.Register(graft.Node[ports.BuildSystem]{
		ID:        BuildSystemNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.BuildSystem, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuildSystem(executor, 0), nil
		},
	})
}
