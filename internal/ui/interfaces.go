package ui

import "context"

// Status phases understood by WriteStatus.
const (
	PhaseRunning = "running"
	PhaseDone    = "done"
	PhaseWarning = "warning"
	PhaseError   = "error"
)

// UserInterface defines the contract for all user interactions.
// It follows a Read/Write pattern for clarity.
//
// Context Usage:
// ReadInput accepts context.Context for cancellation support.
// If the user cancels (Ctrl+C), the context will be cancelled,
// and implementations should return immediately with context.Canceled error.
type UserInterface interface {
	// ReadInput prompts the user for general text input
	ReadInput(ctx context.Context, prompt string) (string, error)

	// WriteStatus displays a build step update (e.g., "Extracting Maven...")
	WriteStatus(phase string, message string)

	// WriteMessage displays longer markdown content such as final instructions
	WriteMessage(content string)

	// WriteProgress updates the transfer progress of a named download
	WriteProgress(name string, done, total int64)
}
