// Package tui renders a live progress view of a comparison run.
package tui

import "github.com/charmbracelet/lipgloss"

// Status glyphs convey meaning without relying on color alone.
const (
	GlyphPassed  = "✓"
	GlyphFailed  = "✗"
	GlyphErrored = "⚠"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan)

var spinnerStyle = lipgloss.NewStyle().
	Foreground(colorYellow)

var (
	passedStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	erroredStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
