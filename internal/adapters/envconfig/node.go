package envconfig

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the environment config Graft node.
const NodeID graft.ID = "adapter.envconfig"

func init() {
	graft.Register(graft.Node[*Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Config, error) {
			return Load()
		},
	})
}
