package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/tui"
)

func TestNewRendererFor(t *testing.T) {
	tty := detector.Environment{IsTTY: true}

	tests := []struct {
		name     string
		env      detector.Environment
		progress string
		want     any
	}{
		{name: "interactive", env: tty, progress: "auto", want: &tui.Renderer{}},
		{name: "piped", env: detector.Environment{}, progress: "auto", want: &linear.Renderer{}},
		{name: "forced linear", env: tty, progress: "linear", want: &linear.Renderer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &envconfig.Config{LogFormat: "auto", Progress: tt.progress}
			assert.IsType(t, tt.want, tui.NewRendererFor(tt.env, cfg))
		})
	}
}
