package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

// NewProgressBar returns the bar used for downloads.
func NewProgressBar(width int) progress.Model {
	return progress.New(progress.WithDefaultGradient(), progress.WithWidth(width))
}

// RenderProgress renders a download line. Without a known total only the byte count is shown.
func RenderProgress(bar progress.Model, name string, done, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("%s %s", name, ProgressLabelStyle.Render(FormatBytes(done)))
	}
	ratio := min(float64(done)/float64(total), 1)
	label := fmt.Sprintf("%s / %s", FormatBytes(done), FormatBytes(total))
	return fmt.Sprintf("%s %s %s", bar.ViewAs(ratio), name, ProgressLabelStyle.Render(label))
}

// FormatBytes formats n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
