package views

import "github.com/charmbracelet/lipgloss"

var (
	StatusRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	StatusDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StatusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	StatusDefaultStyle = lipgloss.NewStyle()

	ProgressLabelStyle = lipgloss.NewStyle().Faint(true)
	PromptStyle        = lipgloss.NewStyle().Bold(true)
)
