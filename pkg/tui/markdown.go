package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderer is a package-level glamour renderer. Word wrap is off; the
// viewport handles wrapping.
var renderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err == nil {
		renderer = r
	}
}

// renderMarkdown converts markdown to styled terminal output, falling back
// to the raw input if rendering fails.
func renderMarkdown(md string) string {
	if renderer == nil || strings.TrimSpace(md) == "" {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// renderYAML highlights a YAML document as a fenced code block.
func renderYAML(doc string) string {
	if renderer == nil || strings.TrimSpace(doc) == "" {
		return doc
	}
	out, err := renderer.Render("```yaml\n" + strings.TrimRight(doc, "\n") + "\n```\n")
	if err != nil {
		return doc
	}
	return strings.Trim(out, "\n")
}
