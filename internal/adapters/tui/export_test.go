package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var NewRendererFor = newRenderer

func PlanMsg(flow string, stages ...string) tea.Msg {
	return planMsg{Flow: flow, Stages: stages}
}

func StartMsg(spanID, name string) tea.Msg {
	return stageStartMsg{SpanID: spanID, Name: name, StartTime: time.Unix(100, 0)}
}

func StartInFlowMsg(spanID, flow, name string) tea.Msg {
	return stageStartMsg{SpanID: spanID, Flow: flow, Name: name, StartTime: time.Unix(100, 0)}
}

func LogMsg(spanID, data string) tea.Msg {
	return stageLogMsg{SpanID: spanID, Data: []byte(data)}
}

func DoneMsg(spanID string, err error) tea.Msg {
	return stageDoneMsg{SpanID: spanID, EndTime: time.Unix(102, 0), Err: err}
}

func FinishedMsg() tea.Msg {
	return finishedMsg{}
}

func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Model) RowCount() int {
	return len(m.rows)
}
