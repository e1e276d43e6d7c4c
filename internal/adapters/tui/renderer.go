// Package tui renders stage progress as an interactive Bubble Tea tree of
// flows and stages beside the output of the selected stage.
package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer on top of a tea.Program.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
	once    sync.Once
}

// NewRenderer creates a Renderer for model. Program options such as
// tea.WithOutput or tea.WithInput are passed through.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start runs the program in the background.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop marks the run finished, which makes the program exit after a final frame.
func (r *Renderer) Stop() error {
	r.once.Do(func() {
		r.program.Send(finishedMsg{})
	})
	return nil
}

// Wait blocks until the program has exited.
func (r *Renderer) Wait() error {
	err := <-r.errCh
	r.errCh <- err
	return err
}

// OnPlanEmit adds the flow to the tree.
func (r *Renderer) OnPlanEmit(stages []string, flow string) {
	r.program.Send(planMsg{Flow: flow, Stages: stages})
}

// OnTaskStart marks a stage of flow running.
func (r *Renderer) OnTaskStart(spanID, flow, name string, startTime time.Time) {
	r.program.Send(stageStartMsg{SpanID: spanID, Flow: flow, Name: name, StartTime: startTime})
}

// OnTaskLog appends output to the stage terminal.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	r.program.Send(stageLogMsg{SpanID: spanID, Data: buf})
}

// OnTaskComplete records the stage result.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.program.Send(stageDoneMsg{SpanID: spanID, EndTime: endTime, Err: err})
}

// Model returns the model driven by the program.
func (r *Renderer) Model() *Model {
	return r.model
}

// Program returns the underlying tea.Program.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
