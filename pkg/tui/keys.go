package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Confirm     key.Binding
	Up          key.Binding
	Down        key.Binding
	PgUp        key.Binding
	PgDown      key.Binding
	PreviewUp   key.Binding
	PreviewDown key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous field"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next field"),
	),
	PgUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "scroll results"),
	),
	PgDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "scroll results"),
	),
	PreviewUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("ctrl+u", "scroll playbook"),
	),
	PreviewDown: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "scroll playbook"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// keyBarText renders the hints for the current mode.
func keyBarText(mode inputMode) string {
	switch mode {
	case modeForm:
		return keyStyle.Render("↑↓/kj") + keyDescStyle.Render(":move") + "  " +
			keyStyle.Render("enter") + keyDescStyle.Render(":edit field") + "  " +
			keyStyle.Render("1-9") + keyDescStyle.Render(":jump") + "  " +
			keyStyle.Render("ctrl+c") + keyDescStyle.Render(":quit")
	case modeBusy:
		return keyStyle.Render("PgUp/Dn") + keyDescStyle.Render(":scroll") + "  " +
			keyStyle.Render("ctrl+c") + keyDescStyle.Render(":quit")
	}
	return keyStyle.Render("enter") + keyDescStyle.Render(":submit") + "  " +
		keyStyle.Render("PgUp/Dn") + keyDescStyle.Render(":scroll results") + "  " +
		keyStyle.Render("ctrl+u/d") + keyDescStyle.Render(":scroll playbook") + "  " +
		keyStyle.Render("ctrl+c") + keyDescStyle.Render(":quit")
}
