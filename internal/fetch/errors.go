package fetch

import (
	"fmt"

	"github.com/opencontainers/go-digest"
)

// HTTPStatusError is returned when the server answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("download %s: bad response: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: bad response: %s: %s", e.URL, e.Status, e.Body)
}

// DigestMismatchError is returned when downloaded content does not match the expected digest.
type DigestMismatchError struct {
	URL      string
	Expected digest.Digest
	Actual   digest.Digest
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("download %s: digest mismatch: expected %s, got %s", e.URL, e.Expected, e.Actual)
}

// DownloadError wraps transport and filesystem failures during a download.
type DownloadError struct {
	URL   string
	Dest  string
	Cause error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s to %s: %v", e.URL, e.Dest, e.Cause)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}
