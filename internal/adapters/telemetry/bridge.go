package telemetry

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor and reports stage spans to the
// renderer. A stage span carries the flow attribute; any other span, such as
// one started by instrumented libraries, never reaches the renderer.
type Bridge struct {
	renderer ports.Renderer

	mu     sync.Mutex
	stages map[trace.SpanID]struct{}
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a Bridge reporting to renderer. A nil renderer drops every span.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{
		renderer: renderer,
		stages:   make(map[trace.SpanID]struct{}),
	}
}

// OnStart reports a stage start under its flow.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}
	flow, ok := stringAttr(s.Attributes(), ports.AttrFlow)
	if !ok {
		return
	}

	b.mu.Lock()
	b.stages[sc.SpanID()] = struct{}{}
	b.mu.Unlock()

	b.renderer.OnTaskStart(sc.SpanID().String(), flow, s.Name(), s.StartTime())
}

// OnEnd reports the result of a stage started through OnStart.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil {
		return
	}

	id := s.SpanContext().SpanID()
	b.mu.Lock()
	_, ok := b.stages[id]
	delete(b.stages, id)
	b.mu.Unlock()
	if !ok {
		return
	}

	b.renderer.OnTaskComplete(id.String(), s.EndTime(), stageError(s))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown forgets stages that never ended.
func (b *Bridge) Shutdown(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.stages)
	return nil
}

// stageError turns an error status into the error shown for the stage.
// A status without description falls back to the stage name.
func stageError(s sdktrace.ReadOnlySpan) error {
	if s.Status().Code != codes.Error {
		return nil
	}
	if desc := s.Status().Description; desc != "" {
		return errors.New(desc)
	}
	return errors.New(s.Name() + " failed")
}

func stringAttr(attrs []attribute.KeyValue, key attribute.Key) (string, bool) {
	for _, kv := range attrs {
		if kv.Key == key && kv.Value.Type() == attribute.STRING {
			return kv.Value.AsString(), true
		}
	}
	return "", false
}
