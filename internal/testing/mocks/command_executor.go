// Package mocks provides test doubles shared by package tests.
package mocks

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/luxdlx/buildtools/internal/service/executor"
)

// CommandCall records one RunWithTimeout invocation.
type CommandCall struct {
	Command []string
	Dir     string
	Env     []string
	Timeout time.Duration
}

// MockCommandExecutor implements the command runner interfaces for testing
type MockCommandExecutor struct {
	mu sync.Mutex

	// Tools maps names to paths reported by LookPath; missing names are not found.
	Tools              map[string]string
	RunWithTimeoutFunc func(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
	Calls              []CommandCall
}

// NewMockCommandExecutor creates a mock that finds the given tools and runs every command
// successfully.
func NewMockCommandExecutor(tools map[string]string) *MockCommandExecutor {
	return &MockCommandExecutor{Tools: tools}
}

func (m *MockCommandExecutor) LookPath(name string) (string, error) {
	if p, ok := m.Tools[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (m *MockCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, CommandCall{Command: command, Dir: dir, Env: env, Timeout: timeout})
	m.mu.Unlock()
	if m.RunWithTimeoutFunc != nil {
		return m.RunWithTimeoutFunc(ctx, command, dir, env, timeout)
	}
	return &executor.Result{}, nil
}

// Fail makes every command exit with code and the given output.
func (m *MockCommandExecutor) Fail(code int, stdout, stderr string) *MockCommandExecutor {
	m.RunWithTimeoutFunc = func(context.Context, []string, string, []string, time.Duration) (*executor.Result, error) {
		return &executor.Result{ExitCode: code, Stdout: stdout, Stderr: stderr}, &MockExitError{Code: code}
	}
	return m
}

// MockExitError simulates an exit error with a specific exit code
type MockExitError struct {
	Code int
}

func (e *MockExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *MockExitError) ExitCode() int {
	return e.Code
}
