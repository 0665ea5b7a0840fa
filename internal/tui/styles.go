package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

const nullText = "∅"

// OK and Fail print one styled status line for non-interactive commands.
func OK(msg string) string   { return successStyle.Render("✔ " + msg) }
func Fail(msg string) string { return errorStyle.Render("✖ " + msg) }

// Panel boxes lines the same way the interactive view does.
func Panel(lines ...string) string {
	return panelStyle.Render(strings.Join(lines, "\n"))
}
