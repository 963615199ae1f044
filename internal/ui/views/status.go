package views

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatus renders one status line
func RenderStatus(phase, message string) string {
	var icon string
	var style lipgloss.Style

	switch phase {
	case "running":
		icon = "→"
		style = StatusRunningStyle
	case "done":
		icon = "✔"
		style = StatusDoneStyle
	case "warning":
		icon = "!"
		style = StatusWarningStyle
	case "error":
		icon = "✘"
		style = StatusErrorStyle
	default:
		style = StatusDefaultStyle
	}

	if icon == "" {
		return style.Render(message)
	}
	return style.Render(fmt.Sprintf("%s %s", icon, message))
}
