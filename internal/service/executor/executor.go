package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/luxdlx/buildtools/internal/config"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
type OSCommandExecutor struct {
	config *config.Config
	stream io.Writer
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg}
}

// WithStream returns a copy of the executor that also copies command output to w as it arrives.
func (f *OSCommandExecutor) WithStream(w io.Writer) *OSCommandExecutor {
	return &OSCommandExecutor{config: f.config, stream: w}
}

// LookPath reports the resolved path of an executable on PATH.
func (f *OSCommandExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes a command and returns the result. It buffers output internally.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdout, stderr := f.collectors()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	err := cmd.Wait()
	return f.result(stdout, stderr, err, time.Since(start)), err
}

// RunWithTimeout executes a command with a timeout and graceful shutdown.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	// We don't use CommandContext's timeout here because we want to handle graceful shutdown
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil
	cmd.WaitDelay = time.Duration(f.config.Tools.GracefulShutdownMs) * time.Millisecond

	stdout, stderr := f.collectors()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		// Try graceful shutdown
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(time.Duration(f.config.Tools.GracefulShutdownMs) * time.Millisecond):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	res := f.result(stdout, stderr, execErr, time.Since(start))
	if errors.Is(execErr, ErrTimeout) {
		res.ExitCode = -1
	}
	return res, execErr
}

func (f *OSCommandExecutor) collectors() (*lockedCollector, *lockedCollector) {
	maxBytes := int(f.config.Tools.MaxCommandOutputSize)
	var tee io.Writer
	if f.stream != nil {
		// One writer for both streams so interleaved lines are not torn.
		tee = &syncWriter{w: f.stream}
	}
	return &lockedCollector{c: newCollector(maxBytes, tee)}, &lockedCollector{c: newCollector(maxBytes, tee)}
}

func (f *OSCommandExecutor) result(stdout, stderr *lockedCollector, err error, d time.Duration) *Result {
	stdout.mu.Lock()
	defer stdout.mu.Unlock()
	stderr.mu.Lock()
	defer stderr.mu.Unlock()

	return &Result{
		Stdout:    stdout.c.String(),
		Stderr:    stderr.c.String(),
		ExitCode:  getExitCode(err),
		Truncated: stdout.c.Truncated() || stderr.c.Truncated(),
		Duration:  d,
	}
}

func getExitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

// lockedCollector guards a collector written by the os/exec copy goroutines.
type lockedCollector struct {
	mu sync.Mutex
	c  *collector
}

func (l *lockedCollector) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Write(p)
}

// syncWriter serialises stdout and stderr onto one stream.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
