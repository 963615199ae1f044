package patch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPatchTool is returned when neither git nor patch is available on PATH.
var ErrNoPatchTool = errors.New("applying a patch needs git or patch on PATH")

// RepoError wraps a failure of the staging repository.
type RepoError struct {
	Dir   string
	Op    string
	Cause error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("git %s in %s failed: %v", e.Op, e.Dir, e.Cause)
}

func (e *RepoError) Unwrap() error { return e.Cause }

// ApplyError is returned when the patch tool rejects the patch.
type ApplyError struct {
	Tool     string
	ExitCode int
	Output   string
	Cause    error
}

func (e *ApplyError) Error() string {
	msg := fmt.Sprintf("%s could not apply the patch (exit code %d)", e.Tool, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ":\n" + out
	}
	return msg
}

func (e *ApplyError) Unwrap() error { return e.Cause }
