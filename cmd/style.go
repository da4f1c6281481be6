package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/relampo/relampo-yml-editor-sub000/internal/lint"
)

var (
	typeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	idStyle       = lipgloss.NewStyle().Faint(true)
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func severityLabel(s lint.Severity) string {
	if s == lint.SeverityError {
		return errorStyle.Render(string(s))
	}
	return warningStyle.Render(string(s))
}
