package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/luxdlx/buildtools/internal/ui/services"
	"github.com/luxdlx/buildtools/internal/ui/views"
	"github.com/mattn/go-isatty"
)

const defaultWidth = 80

// Console implements UserInterface on a line oriented terminal
type Console struct {
	in          io.Reader
	out         io.Writer
	renderer    services.MarkdownRenderer
	interactive bool
	width       int

	mu           sync.Mutex
	lines        *lineReader
	bar          progress.Model
	progressLine bool
}

// NewConsole creates a Console. Prompts use an interactive text input when both in and out are
// terminals and fall back to reading plain lines otherwise.
func NewConsole(in io.Reader, out io.Writer, renderer services.MarkdownRenderer) *Console {
	if in == nil {
		panic("in is required")
	}
	if out == nil {
		panic("out is required")
	}
	if renderer == nil {
		panic("renderer is required")
	}
	return &Console{
		in:          in,
		out:         out,
		renderer:    renderer,
		interactive: isTerminal(in) && isTerminal(out),
		width:       defaultWidth,
		bar:         views.NewProgressBar(30),
	}
}

// NewStdConsole creates a Console on the process's standard streams.
func NewStdConsole() *Console {
	return NewConsole(os.Stdin, os.Stdout, services.NewGlamourRenderer(isTerminal(os.Stdout)))
}

// Interactive reports whether prompts use the terminal input.
func (c *Console) Interactive() bool {
	return c.interactive
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ReadInput prompts the user for a line of input. End of input yields an empty answer.
func (c *Console) ReadInput(ctx context.Context, prompt string) (string, error) {
	if c.interactive {
		c.mu.Lock()
		c.endProgressLine()
		c.mu.Unlock()
		return runPrompt(ctx, c.in, c.out, prompt)
	}

	c.mu.Lock()
	c.endProgressLine()
	fmt.Fprint(c.out, prompt)
	if c.lines == nil {
		c.lines = newLineReader(c.in)
	}
	lines := c.lines
	c.mu.Unlock()

	return lines.next(ctx)
}

// WriteStatus prints a styled status line
func (c *Console) WriteStatus(phase string, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgressLine()
	fmt.Fprintln(c.out, views.RenderStatus(phase, message))
}

// WriteMessage renders markdown content, printing it raw when rendering fails
func (c *Console) WriteMessage(content string) {
	rendered, err := c.renderer.Render(content, c.width)
	if err != nil {
		rendered = content + "\n"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgressLine()
	fmt.Fprint(c.out, rendered)
}

// WriteProgress redraws the progress line on terminals. Elsewhere only completion is printed.
func (c *Console) WriteProgress(name string, done, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	complete := total > 0 && done >= total
	if !c.interactive {
		if complete {
			fmt.Fprintln(c.out, views.RenderProgress(c.bar, name, done, total))
		}
		return
	}
	fmt.Fprintf(c.out, "\r%s", views.RenderProgress(c.bar, name, done, total))
	c.progressLine = true
	if complete {
		c.endProgressLine()
	}
}

// endProgressLine terminates a pending progress line. Callers hold mu.
func (c *Console) endProgressLine() {
	if c.progressLine {
		fmt.Fprintln(c.out)
		c.progressLine = false
	}
}

// lineReader reads lines in a background goroutine so that reads can be abandoned on
// cancellation without losing buffered input.
type lineReader struct {
	ch chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{ch: make(chan lineResult)}
	go func() {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			lr.ch <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
			if err != nil {
				close(lr.ch)
				return
			}
		}
	}()
	return lr
}

func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-lr.ch:
		if !ok || errors.Is(res.err, io.EOF) {
			return res.line, nil
		}
		return res.line, res.err
	}
}
