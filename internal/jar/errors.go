package jar

import (
	"errors"
	"fmt"
)

// ArchiveReadError is returned when the archive cannot be opened or an entry cannot be read.
type ArchiveReadError struct {
	Path  string // archive path, or entry name when Entry is set
	Entry bool
	Cause error
}

func (e *ArchiveReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to read archive: %v", e.Cause)
	}
	if e.Entry {
		return fmt.Sprintf("failed to read archive entry %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to read archive %s: %v", e.Path, e.Cause)
}

func (e *ArchiveReadError) Unwrap() error {
	return e.Cause
}

// FilesystemError is returned when a directory or file cannot be created or written.
type FilesystemError struct {
	Entry string // archive entry being materialized
	Path  string // resolved output path
	Cause error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("failed to materialize entry %s at %s: %v", e.Entry, e.Path, e.Cause)
}

func (e *FilesystemError) Unwrap() error {
	return e.Cause
}

// ErrUnsafePath is the cause of a FilesystemError for entries with a ".." segment.
var ErrUnsafePath = errors.New("entry path escapes the output directory")
