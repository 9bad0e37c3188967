package tui

import (
	"fmt"
	"strings"

	"github.com/mahespth/ansible-write/pkg/builder"
	"github.com/mattn/go-runewidth"
)

// renderForm lists the fields of an editing session. The selected row is
// drawn in reverse video and required options in bold. Rows are limited
// to height lines, scrolled so the cursor stays visible.
func renderForm(v builder.View, width, height int) string {
	if width < 20 {
		width = 20
	}
	labelW := 6
	for _, r := range v.Rows {
		if w := runewidth.StringWidth(r.Label); w > labelW {
			labelW = w
		}
	}
	if labelW > width/3 {
		labelW = width / 3
	}

	lines := make([]string, 0, len(v.Rows))
	for i, r := range v.Rows {
		lines = append(lines, renderRow(i, r, i == v.Cursor, labelW, width))
	}

	// Keep the cursor in view.
	visible := height - 2
	if v.Message != "" {
		visible -= 2
	}
	if visible < 1 {
		visible = 1
	}
	start := 0
	if v.Cursor >= visible {
		start = v.Cursor - visible + 1
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines[start:end], "\n"))
	if v.Message != "" {
		b.WriteString("\n\n" + formMessage.Render(runewidth.Truncate(v.Message, width, "…")))
	}
	return b.String()
}

func renderRow(idx int, r builder.Row, selected bool, labelW, width int) string {
	prefix := "  "
	if selected {
		prefix = GlyphCursor + " "
	}

	var line string
	if r.Control {
		line = prefix + rowControl.Render("["+r.Label+"]")
	} else {
		label := runewidth.FillRight(runewidth.Truncate(r.Label, labelW, "…"), labelW)
		if r.Required {
			label = rowRequired.Render(label)
		}
		value := r.Value
		if value == "" && r.Key != "name" && r.Key != "module" {
			value = "<unset>"
		}
		room := width - labelW - 6
		if room < 4 {
			room = 4
		}
		line = fmt.Sprintf("%s%2d %s %s", prefix, idx+1, label, runewidth.Truncate(value, room, "…"))
		if r.Help != "" {
			used := runewidth.StringWidth(prefix) + 4 + labelW + runewidth.StringWidth(value)
			if rest := width - used - 3; rest > 8 {
				line += " " + rowHelp.Render(runewidth.Truncate(r.Help, rest, "…"))
			}
		}
	}
	if selected {
		return rowSelected.Render(line)
	}
	return line
}
