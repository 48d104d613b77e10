// Package tui renders terminal output for interactive sessions.
package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWidth is the wrap width when the terminal size is unknown.
const DefaultWidth = 100

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of f, or DefaultWidth.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// NewRenderer returns a function that renders markdown using glamour,
// wrapping at width columns. The style follows the terminal background.
func NewRenderer(width int) (func(string) (string, error), error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
