package tui

// row is one visible line of the tree. stage is nil for a flow header.
type row struct {
	flow  *FlowNode
	stage *StageNode
	depth int
}

// rebuild flattens the flow tree into visible rows. The selection stays on
// the same node, or on its flow when the flow was collapsed.
func (m *Model) rebuild() {
	prev, hadPrev := m.selectedRow()

	m.rows = m.rows[:0]
	for _, f := range m.Flows {
		m.rows = append(m.rows, row{flow: f})
		if !f.Expanded {
			continue
		}
		for _, s := range f.Stages {
			m.rows = append(m.rows, row{flow: f, stage: s, depth: 1})
		}
	}

	if !hadPrev {
		m.Selected = 0
		return
	}
	for i, r := range m.rows {
		if r.flow == prev.flow && r.stage == prev.stage {
			m.Selected = i
			return
		}
	}
	for i, r := range m.rows {
		if r.flow == prev.flow && r.stage == nil {
			m.Selected = i
			return
		}
	}
}
