package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.listRows == 0 {
		return "Waiting for plan..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.stageList(), m.logPane())
}

func (m *Model) stageList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("STAGES") + "\n\n")

	end := min(m.offset+m.listRows, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}
	return listStyle.Render(b.String())
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]

	cursor := "  "
	if i == m.Selected {
		cursor = cursorStyle.Render("> ")
	}

	if r.stage == nil {
		marker := "▸"
		if r.flow.Expanded {
			marker = "▾"
		}
		st := r.flow.Status()
		label := fmt.Sprintf("%s %s %s", marker, statusIcon(st), r.flow.Name)
		return cursor + flowStyle.Inherit(statusStyle(st)).Render(label)
	}

	s := r.stage
	label := fmt.Sprintf("%s%s %s", strings.Repeat("  ", r.depth), statusIcon(s.Status), s.Name)
	if d := s.Elapsed(m.now()); d > 0 {
		label += " " + pendingStyle.Render(d.Round(100*time.Millisecond).String())
	}
	return cursor + statusStyle(s.Status).Render(label)
}

func (m *Model) logPane() string {
	stage := m.ActiveStage()
	if stage == nil {
		return logStyle.Render(titleStyle.Render("OUTPUT (waiting)"))
	}

	mode := "following"
	if !m.Follow {
		mode = "manual"
	}
	title := fmt.Sprintf("%s / %s (%s)", stage.Flow.Name, stage.Name, mode)

	header := titleStyle.Render(title)
	if stage.Status == StatusFailed {
		header = failureTitleStyle.Render(title)
	}

	body := stage.Term.View()
	if stage.Err != nil {
		body = strings.TrimRight(body, "\n") + "\n" + failedStyle.Render(stage.Err.Error())
	}
	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
}
