package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// panel is a bordered, scrollable pane.
type panel struct {
	viewport viewport.Model
	title    string
	content  string
	// follow keeps the view pinned to the bottom on new content.
	follow bool

	width  int
	height int
	ready  bool
}

func newPanel(title string, follow bool) panel {
	return panel{title: title, follow: follow}
}

// SetSize updates the viewport dimensions.
func (p *panel) SetSize(width, height int) {
	p.width = width
	p.height = height

	contentW := width - 4  // border + padding
	contentH := height - 3 // title + border
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}

	if !p.ready {
		p.viewport = viewport.New(contentW, contentH)
		p.ready = true
	} else {
		p.viewport.Width = contentW
		p.viewport.Height = contentH
	}
	p.refresh()
}

// SetContent replaces the pane content.
func (p *panel) SetContent(text string) {
	p.content = text
	p.refresh()
}

// Append adds text to the end of the pane.
func (p *panel) Append(text string) {
	p.content += text
	p.refresh()
}

// Content returns the raw pane content.
func (p *panel) Content() string { return p.content }

func (p *panel) refresh() {
	if !p.ready {
		return
	}
	p.viewport.SetContent(p.content)
	if p.follow {
		p.viewport.GotoBottom()
	}
}

// Update handles viewport-specific messages (mouse scroll, etc.).
func (p *panel) Update(msg tea.Msg) {
	if p.ready {
		p.viewport, _ = p.viewport.Update(msg)
	}
}

func (p *panel) PageUp() {
	if p.ready {
		p.viewport.HalfViewUp()
	}
}

func (p *panel) PageDown() {
	if p.ready {
		p.viewport.HalfViewDown()
	}
}

// View renders the pane with its title and a scroll indicator.
func (p *panel) View() string {
	return p.render(p.title, p.viewportView())
}

func (p *panel) viewportView() string {
	if !p.ready {
		return ""
	}
	return p.viewport.View()
}

// render frames body with the pane border, sized like the viewport.
func (p *panel) render(title, body string) string {
	header := panelTitle.Render(title)
	if p.ready && p.viewport.TotalLineCount() > p.viewport.VisibleLineCount() {
		scrollInfo := fmt.Sprintf(" %3.0f%%", p.viewport.ScrollPercent()*100)
		padding := p.width - 4 - lipgloss.Width(header) - len(scrollInfo)
		if padding < 0 {
			padding = 0
		}
		header += strings.Repeat(" ", padding) + keyDescStyle.Render(scrollInfo)
	}
	return panelBorder.Width(p.width - 2).Height(p.height - 2).Render(header + "\n" + body)
}
