package pipeline

import "fmt"

// StepError wraps the failure of a named build step.
type StepError struct {
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// UnsupportedOSError is returned on platforms without a JDK download.
type UnsupportedOSError struct {
	GOOS string
}

func (e *UnsupportedOSError) Error() string {
	return fmt.Sprintf("unsupported OS: %s", e.GOOS)
}

// MissingFileError is returned when an expected intermediate file was not produced.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}
