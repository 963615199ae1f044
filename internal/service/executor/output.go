package executor

import (
	"io"
)

// collector keeps the last maxBytes of a command's output.
// Build tools report failures at the end of their logs, so the tail is kept.
type collector struct {
	buf       []byte
	maxBytes  int
	truncated bool
	tee       io.Writer
}

func newCollector(maxBytes int, tee io.Writer) *collector {
	return &collector{maxBytes: maxBytes, tee: tee}
}

func (c *collector) Write(p []byte) (int, error) {
	if c.tee != nil {
		// Streaming is best effort; a broken terminal must not fail the command.
		_, _ = c.tee.Write(p)
	}

	c.buf = append(c.buf, p...)
	if over := len(c.buf) - c.maxBytes; over > 0 {
		c.buf = append(c.buf[:0], c.buf[over:]...)
		c.truncated = true
	}
	return len(p), nil
}

func (c *collector) String() string {
	return string(c.buf)
}

func (c *collector) Truncated() bool {
	return c.truncated
}
