// Package linear renders stage progress as chronological, prefixed lines.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// prefixColors rotate per stage name so interleaved output stays readable.
var prefixColors = []termenv.Color{
	termenv.ANSICyan,
	termenv.ANSIMagenta,
	termenv.ANSIBlue,
	termenv.ANSIYellow,
	termenv.ANSIBrightGreen,
	termenv.ANSIBrightBlue,
}

// Renderer implements ports.Renderer. Command output goes to stdout with a
// "[stage]" prefix, lifecycle events go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output
	events *slog.Logger

	mu      sync.Mutex
	tasks   map[string]*taskState
	buffers map[string]*bytes.Buffer
}

type taskState struct {
	name      string
	startTime time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithJSON emits lifecycle events as slog JSON records on stderr.
func WithJSON() Option {
	return func(r *Renderer) {
		r.events = slog.New(slog.NewJSONHandler(r.stderr, nil))
	}
}

// NewRenderer creates a Renderer. Nil writers fall back to the process streams.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	r := &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, output.ColorProfileANSI),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start is a no-op; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial lines of stages that never completed.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// Wait is a no-op; the renderer writes synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the stages a flow is about to run.
func (r *Renderer) OnPlanEmit(stages []string, flow string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events != nil {
		r.events.Info("plan", "flow", flow, "stages", stages)
		return
	}

	header := r.output.String(flow + " flow").Bold().String()
	_, _ = fmt.Fprintf(r.stderr, "%s: %s\n", header, strings.Join(stages, " → "))
}

// OnTaskStart records the stage and prints a start line.
func (r *Renderer) OnTaskStart(spanID, _ string, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{name: name, startTime: startTime}
	r.buffers[spanID] = new(bytes.Buffer)

	if r.events != nil {
		r.events.Info("stage started", "stage", name)
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", r.prefix(name), style.Circle)
}

// OnTaskLog prints complete lines and keeps the trailing partial line buffered.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				rest := new(bytes.Buffer)
				rest.Write(line)
				r.buffers[spanID] = rest
			}
			break
		}
		r.printLineLocked(task.name, line)
	}
}

// OnTaskComplete flushes the stage output and prints its outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)
	duration := endTime.Sub(task.startTime).Round(time.Millisecond)

	switch {
	case r.events != nil && err != nil:
		r.events.Error("stage failed", "stage", task.name, "duration", duration, "error", err.Error())
	case r.events != nil:
		r.events.Info("stage completed", "stage", task.name, "duration", duration)
	case err != nil:
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n", r.prefix(task.name), symbol, duration, err)
	default:
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s %v\n", r.prefix(task.name), symbol, duration)
	}

	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
}

func (r *Renderer) prefix(name string) string {
	color := prefixColors[xxhash.Sum64String(name)%uint64(len(prefixColors))]
	return r.output.String("[" + name + "]").Foreground(color).String()
}

// flushBufferLocked prints whatever partial line is left for a stage.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task.name, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
