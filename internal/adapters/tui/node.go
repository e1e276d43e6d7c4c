package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
)

// NodeID is the unique identifier for the renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{envconfig.NodeID},
		Run: func(ctx context.Context) (ports.Renderer, error) {
			cfg, err := graft.Dep[*envconfig.Config](ctx)
			if err != nil {
				return nil, err
			}
			return newRenderer(detector.Current(), cfg), nil
		},
	})
}

func newRenderer(env detector.Environment, cfg *envconfig.Config) ports.Renderer {
	if detector.ResolveProgress(env, cfg.Progress, cfg.LogFormat) == detector.ProgressTUI {
		lipgloss.SetColorProfile(output.New(os.Stderr).Profile)
		return NewRenderer(NewModel(), tea.WithOutput(os.Stderr))
	}

	var opts []linear.Option
	if detector.Resolve(env, cfg.LogFormat) == detector.FormatJSON {
		opts = append(opts, linear.WithJSON())
	}
	return linear.NewRenderer(nil, nil, opts...)
}
