package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	buttonBusyStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	noticeErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Hello World"))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("  ")

	switch {
	case m.detached:
		sb.WriteString(buttonBusyStyle.Render("detached"))
	case m.busy:
		sb.WriteString(buttonBusyStyle.Render("working..."))
	default:
		sb.WriteString(buttonStyle.Render("Say hello ⏎"))
	}
	sb.WriteString("\n\n")

	for _, n := range m.notices {
		if n.isErr {
			sb.WriteString(noticeErrStyle.Render(n.text))
		} else {
			sb.WriteString(noticeStyle.Render(n.text))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("enter: say hello • ctrl+n: navigate away • ctrl+d: detach • esc: quit"))
	return sb.String()
}
