package mocks

import (
	"context"
	"strings"
	"sync"
)

// MockUI implements ui.UserInterface and records everything written to it
type MockUI struct {
	mu sync.Mutex

	InputFunc    func(ctx context.Context, prompt string) (string, error)
	ProgressFunc func(name string, done, total int64)

	Prompts  []string
	Statuses []string // "phase: message"
	Messages []string
}

// NewMockUI creates a new mock UI that answers every prompt with an empty string
func NewMockUI() *MockUI {
	return &MockUI{}
}

func (m *MockUI) ReadInput(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.InputFunc != nil {
		return m.InputFunc(ctx, prompt)
	}
	return "", nil
}

func (m *MockUI) WriteStatus(phase string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses = append(m.Statuses, phase+": "+message)
}

func (m *MockUI) WriteMessage(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, content)
}

func (m *MockUI) WriteProgress(name string, done, total int64) {
	if m.ProgressFunc != nil {
		m.ProgressFunc(name, done, total)
	}
}

// StatusLog returns every recorded status line joined by newlines.
func (m *MockUI) StatusLog() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.Statuses, "\n")
}

// LastStatus returns the most recent status line, or "" when nothing was written.
func (m *MockUI) LastStatus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Statuses) == 0 {
		return ""
	}
	return m.Statuses[len(m.Statuses)-1]
}
