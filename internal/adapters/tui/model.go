package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	listWidthRatio = 0.3
	paneChrome     = 4
)

// Status is the lifecycle state of a stage.
type Status int

const (
	// StatusPending means the stage is planned but has not started.
	StatusPending Status = iota
	// StatusRunning means the stage is executing.
	StatusRunning
	// StatusDone means the stage returned without error.
	StatusDone
	// StatusFailed means the stage returned an error.
	StatusFailed
)

// FlowNode is one planned flow and its stages.
type FlowNode struct {
	Name     string
	Stages   []*StageNode
	Expanded bool
}

// Status summarizes the flow from its stages.
func (f *FlowNode) Status() Status {
	done := 0
	for _, s := range f.Stages {
		switch s.Status {
		case StatusFailed:
			return StatusFailed
		case StatusRunning:
			return StatusRunning
		case StatusDone:
			done++
		}
	}
	if done > 0 && done == len(f.Stages) {
		return StatusDone
	}
	if done > 0 {
		return StatusRunning
	}
	return StatusPending
}

// StageNode is one stage of a flow.
type StageNode struct {
	Name    string
	Flow    *FlowNode
	Status  Status
	Started time.Time
	Ended   time.Time
	Err     error
	Term    *Vterm
}

// Elapsed is the run time so far, or the final duration once ended.
func (s *StageNode) Elapsed(now time.Time) time.Duration {
	switch {
	case s.Started.IsZero():
		return 0
	case s.Ended.IsZero():
		return now.Sub(s.Started)
	default:
		return s.Ended.Sub(s.Started)
	}
}

// Model is the Bubble Tea model rendering a tree of flows and their stages
// next to the output of the selected stage.
type Model struct {
	Flows    []*FlowNode
	Selected int
	Follow   bool
	Finished bool

	spans     map[string]*StageNode
	rows      []row
	offset    int
	listRows  int
	logWidth  int
	logHeight int
	now       func() time.Time
}

// NewModel creates an empty model that follows the running stage.
func NewModel() *Model {
	return &Model{
		Follow: true,
		spans:  make(map[string]*StageNode),
		now:    time.Now,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case planMsg:
		m.addFlow(msg.Flow, msg.Stages)
	case stageStartMsg:
		m.startStage(msg)
	case stageLogMsg:
		if s, ok := m.spans[msg.SpanID]; ok {
			_, _ = s.Term.Write(msg.Data)
		}
	case stageDoneMsg:
		m.finishStage(msg)
	case finishedMsg:
		m.Finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter", " ":
		if r, ok := m.selectedRow(); ok && r.stage == nil {
			r.flow.Expanded = !r.flow.Expanded
			m.rebuild()
		}
	case "esc":
		m.Follow = true
		m.focusRunning()
	case "pgup":
		m.scrollActive(func(t *Vterm) { t.ScrollPage(-1) })
	case "pgdown":
		m.scrollActive(func(t *Vterm) { t.ScrollPage(1) })
	case "home":
		m.scrollActive((*Vterm).ScrollTop)
	case "end":
		m.scrollActive((*Vterm).ScrollBottom)
	}
	return nil
}

func (m *Model) move(delta int) {
	next := m.Selected + delta
	if next < 0 || next >= len(m.rows) {
		return
	}
	m.Selected = next
	m.Follow = false
	m.ensureVisible()
}

func (m *Model) scrollActive(fn func(*Vterm)) {
	if s := m.ActiveStage(); s != nil {
		m.Follow = false
		fn(s.Term)
	}
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * listWidthRatio)
	m.logWidth = max(width-listWidth-paneChrome, 1)
	m.logHeight = max(height-headerHeight(), 1)
	m.listRows = max(height-headerHeight(), 1)

	for _, f := range m.Flows {
		for _, s := range f.Stages {
			s.Term.Resize(m.logWidth, m.logHeight)
		}
	}
	m.ensureVisible()
}

func (m *Model) addFlow(name string, stages []string) {
	for _, f := range m.Flows {
		f.Expanded = false
	}

	flow := &FlowNode{Name: name, Expanded: true}
	for _, s := range stages {
		term := NewVterm()
		if m.logWidth > 0 {
			term.Resize(m.logWidth, m.logHeight)
		}
		flow.Stages = append(flow.Stages, &StageNode{Name: s, Flow: flow, Term: term})
	}
	m.Flows = append(m.Flows, flow)
	m.rebuild()
	if m.Follow {
		m.selectFlow(flow)
	}
}

// startStage binds a span to the pending stage of that name in the most
// recently planned flow. Flows reuse stage names, so older flows are skipped.
func (m *Model) startStage(msg stageStartMsg) {
	stage := m.pendingStage(msg.Flow, msg.Name)
	if stage == nil {
		return
	}
	stage.Status = StatusRunning
	stage.Started = msg.StartTime
	m.spans[msg.SpanID] = stage

	if m.Follow {
		stage.Flow.Expanded = true
		m.rebuild()
		m.selectStage(stage)
	}
}

// pendingStage finds the first pending stage called name in the latest flow
// named flow. An empty flow means the latest flow of any name.
func (m *Model) pendingStage(flow, name string) *StageNode {
	for i := len(m.Flows) - 1; i >= 0; i-- {
		f := m.Flows[i]
		if flow != "" && f.Name != flow {
			continue
		}
		for _, s := range f.Stages {
			if s.Name == name && s.Status == StatusPending {
				return s
			}
		}
		return nil
	}
	return nil
}

func (m *Model) finishStage(msg stageDoneMsg) {
	stage, ok := m.spans[msg.SpanID]
	if !ok {
		return
	}
	stage.Ended = msg.EndTime
	stage.Err = msg.Err
	if msg.Err != nil {
		stage.Status = StatusFailed
		return
	}
	stage.Status = StatusDone
}

// ActiveStage is the stage whose output is shown. A selected flow shows its
// last started stage.
func (m *Model) ActiveStage() *StageNode {
	r, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if r.stage != nil {
		return r.stage
	}
	var last *StageNode
	for _, s := range r.flow.Stages {
		if s.Status != StatusPending {
			last = s
		}
	}
	return last
}

func (m *Model) focusRunning() {
	for i := len(m.Flows) - 1; i >= 0; i-- {
		for _, s := range m.Flows[i].Stages {
			if s.Status == StatusRunning {
				s.Flow.Expanded = true
				m.rebuild()
				m.selectStage(s)
				s.Term.ScrollBottom()
				return
			}
		}
	}
}

func (m *Model) selectStage(s *StageNode) {
	for i, r := range m.rows {
		if r.stage == s {
			m.Selected = i
			m.ensureVisible()
			return
		}
	}
}

func (m *Model) selectFlow(f *FlowNode) {
	for i, r := range m.rows {
		if r.flow == f && r.stage == nil {
			m.Selected = i
			m.ensureVisible()
			return
		}
	}
}

func (m *Model) selectedRow() (row, bool) {
	if m.Selected < 0 || m.Selected >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.Selected], true
}

func (m *Model) ensureVisible() {
	if m.listRows <= 0 {
		return
	}
	if m.Selected < m.offset {
		m.offset = m.Selected
	} else if m.Selected >= m.offset+m.listRows {
		m.offset = m.Selected - m.listRows + 1
	}
}
