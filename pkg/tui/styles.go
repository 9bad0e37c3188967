// Package tui is the full-screen frontend of ansible-write: a result log on
// the left, the live playbook preview on the right and a single input line
// at the bottom. The builder runs on its own goroutine and talks to the
// Bubble Tea program through a Bridge.
package tui

import "github.com/charmbracelet/lipgloss"

// Result glyphs convey status without relying on color alone.
const (
	GlyphOK      = "✓"
	GlyphFailed  = "✗"
	GlyphSkipped = "⏭"
	GlyphInfo    = "·"
	GlyphCursor  = "▸"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorBlue   = lipgloss.Color("39")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var stateBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(colorYellow).
	Padding(0, 1)

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)

	inputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)
)

// Result log entries.
var (
	entryOK = lipgloss.NewStyle().
		Foreground(colorGreen).
		Bold(true)

	entryFailed = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	entrySkipped = lipgloss.NewStyle().
			Faint(true)

	entryInfo = lipgloss.NewStyle().
			Foreground(colorWhite)
)

// Form rows: the selected field is reverse video, required options are bold.
var (
	rowSelected = lipgloss.NewStyle().
			Reverse(true)

	rowRequired = lipgloss.NewStyle().
			Bold(true)

	rowControl = lipgloss.NewStyle().
			Foreground(colorCyan)

	rowHelp = lipgloss.NewStyle().
		Foreground(colorDim)

	formMessage = lipgloss.NewStyle().
			Foreground(colorYellow)
)

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

var errorStyle = lipgloss.NewStyle().
	Foreground(colorRed).
	Bold(true)

var spinnerStyle = lipgloss.NewStyle().
	Foreground(colorYellow)
