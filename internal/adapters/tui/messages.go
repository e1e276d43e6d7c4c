package tui

import "time"

// planMsg announces the stages of a flow about to run.
type planMsg struct {
	Flow   string
	Stages []string
}

type stageStartMsg struct {
	SpanID    string
	Flow      string
	Name      string
	StartTime time.Time
}

type stageLogMsg struct {
	SpanID string
	Data   []byte
}

type stageDoneMsg struct {
	SpanID  string
	EndTime time.Time
	Err     error
}

// finishedMsg is sent once every flow has returned.
type finishedMsg struct{}
