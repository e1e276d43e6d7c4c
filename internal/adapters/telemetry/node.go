package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/core/ports"
)

// MetricsNodeID is the unique identifier for the metrics Graft node.
const MetricsNodeID graft.ID = "adapter.metrics"

func init() {
	graft.Register(graft.Node[ports.Metrics]{
		ID:        MetricsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{envconfig.NodeID},
		Run: func(ctx context.Context) (ports.Metrics, error) {
			cfg, err := graft.Dep[*envconfig.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewPromMetrics(cfg.MetricsFile), nil
		},
	})
}
