package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns a markdown prompt into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer renders with glamour, picking the style from the terminal
// background. It falls back to plain text if glamour cannot start.
func NewRenderer(wordWrap int) Renderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) { return markdown, nil }

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ForFile picks glamour for terminals and Plain for pipes and files.
func ForFile(f *os.File) Renderer {
	if !IsTerminal(f) {
		return Plain
	}
	width := 0
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 4 {
		width = w - 4
	}
	return NewRenderer(width)
}
