package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation logic.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called when a flow has planned its stages.
	// stages: stage names in execution order
	// flow: the flow being run ("library" or "test")
	OnPlanEmit(stages []string, flow string)

	// OnTaskStart is called when a stage begins.
	// spanID: unique identifier for this execution
	// flow: the flow the stage belongs to, as passed to OnPlanEmit
	OnTaskStart(spanID, flow, name string, startTime time.Time)

	// OnTaskLog is called when a stage emits output.
	// data may contain partial lines or ANSI sequences.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a stage finishes. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
