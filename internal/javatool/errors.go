package javatool

import (
	"fmt"
	"strings"
)

// JavaNotFoundError is returned when no JDK bin directory exists under the java dir.
type JavaNotFoundError struct {
	Dir string
}

func (e *JavaNotFoundError) Error() string {
	return fmt.Sprintf("could not find a Java bin directory under %s", e.Dir)
}

// MavenNotFoundError is returned when no Maven launcher exists under the maven dir.
type MavenNotFoundError struct {
	Dir string
}

func (e *MavenNotFoundError) Error() string {
	return fmt.Sprintf("could not find a Maven installation under %s", e.Dir)
}

// CommandFailedError is returned when a tool ran but exited unsuccessfully.
type CommandFailedError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
	if out := strings.TrimSpace(e.Stderr); out != "" {
		msg += ":\n" + out
	}
	return msg
}

func (e *CommandFailedError) Unwrap() error {
	return e.Cause
}
