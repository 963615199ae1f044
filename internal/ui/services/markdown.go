// Package services holds rendering helpers used by the console UI.
package services

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour.
type GlamourRenderer struct {
	style string
}

// NewGlamourRenderer picks a colour style for terminals and a plain one otherwise.
func NewGlamourRenderer(interactive bool) *GlamourRenderer {
	style := styles.NoTTYStyle
	if interactive {
		style = styles.DarkStyle
	}
	return &GlamourRenderer{style: style}
}

// Render renders content wrapped at width.
func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(g.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
