package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// inputLine is the single-line prompt at the bottom of the screen.
type inputLine struct {
	input  textinput.Model
	label  string
	active bool
	width  int
}

func newInputLine() inputLine {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Prompt = ""
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	return inputLine{input: ti}
}

// Open shows label and focuses the text input.
func (l *inputLine) Open(label string) tea.Cmd {
	l.label = label
	l.active = true
	l.input.Reset()
	return l.input.Focus()
}

// Close blurs the input and returns the submitted text.
func (l *inputLine) Close() string {
	v := l.input.Value()
	l.active = false
	l.input.Blur()
	l.input.Reset()
	return v
}

// IsActive reports whether the line accepts text.
func (l *inputLine) IsActive() bool { return l.active }

// Update forwards a key to the text input.
func (l *inputLine) Update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return cmd
}

func (l *inputLine) SetWidth(width int) { l.width = width }

// View renders the label, truncated to fit, followed by the field.
func (l *inputLine) View(placeholder string) string {
	inner := l.width - 4
	if inner < 10 {
		inner = 10
	}
	if !l.active {
		return inputBorder.Width(l.width - 2).Render(keyDescStyle.Render(runewidth.Truncate(placeholder, inner, "…")))
	}
	label := runewidth.Truncate(l.label, inner/2, "…")
	l.input.Width = inner - runewidth.StringWidth(label) - 1
	return inputBorder.Width(l.width - 2).Render(keyStyle.Render(label) + l.input.View())
}
