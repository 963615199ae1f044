package archive

import "fmt"

// UnsupportedFormatError is returned for archives whose suffix is not recognised.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unknown archive format for %s", e.Path)
}

// UnsafePathError is returned when an entry would be written outside the destination.
type UnsafePathError struct {
	Archive string
	Entry   string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("archive %s: entry %q escapes the destination directory", e.Archive, e.Entry)
}

// ExtractError wraps an I/O failure while unpacking an entry.
type ExtractError struct {
	Archive string
	Entry   string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("failed to extract %s: %v", e.Archive, e.Cause)
	}
	return fmt.Sprintf("failed to extract %s from %s: %v", e.Entry, e.Archive, e.Cause)
}

func (e *ExtractError) Unwrap() error { return e.Cause }
