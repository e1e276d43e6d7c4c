package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/style"
)

var (
	pendingStyle = lipgloss.NewStyle().Foreground(style.Slate)
	runningStyle = lipgloss.NewStyle().Foreground(style.Iris).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(style.Green)
	failedStyle  = lipgloss.NewStyle().Foreground(style.Red)
	cursorStyle  = lipgloss.NewStyle().Foreground(style.Iris).Bold(true)
	flowStyle    = lipgloss.NewStyle().Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Iris).
			Foreground(style.White)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.White)

	listStyle = lipgloss.NewStyle().PaddingRight(1)
	logStyle  = lipgloss.NewStyle().PaddingLeft(1).BorderLeft(true).BorderStyle(lipgloss.NormalBorder())
)

// headerHeight is the title plus the blank line under it.
func headerHeight() int {
	return lipgloss.Height(titleStyle.Render("STAGES")) + 1
}

func statusStyle(s Status) lipgloss.Style {
	switch s {
	case StatusRunning:
		return runningStyle
	case StatusDone:
		return doneStyle
	case StatusFailed:
		return failedStyle
	default:
		return pendingStyle
	}
}

func statusIcon(s Status) string {
	switch s {
	case StatusRunning:
		return "●"
	case StatusDone:
		return "✓"
	case StatusFailed:
		return "✗"
	default:
		return "○"
	}
}
