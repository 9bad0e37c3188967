package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mahespth/ansible-write/pkg/builder"
)

// inputMode is what the model is waiting for from the operator.
type inputMode int

const (
	// modeIdle: the builder holds no pending request.
	modeIdle inputMode = iota
	modePrompt
	modeForm
	modeBusy
)

func (m inputMode) String() string {
	switch m {
	case modePrompt:
		return "command"
	case modeForm:
		return "form"
	case modeBusy:
		return "running"
	}
	return "idle"
}

// Model is the top-level Bubble Tea model for the builder screen.
type Model struct {
	log     panel
	preview panel
	input   inputLine
	spinner spinner.Model

	// Pending builder requests. At most one is set at a time.
	promptReply chan<- string
	navReply    chan<- builder.Nav
	form        builder.View
	// formOpen keeps the form on screen while one of its fields is prompted.
	formOpen bool

	busy      bool
	busyLabel string
	fatalErr  string

	width  int
	height int
}

// Config holds the parameters needed to launch the TUI.
type Config struct {
	// NewBuilder creates the builder over the given UI.
	NewBuilder func(ui builder.UI) *builder.Builder
}

func newModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		log:     newPanel("Results", true),
		preview: newPanel("Playbook", false),
		input:   newInputLine(),
		spinner: sp,
	}
}

// Run starts the builder on its own goroutine and the Bubble Tea program on
// the caller's. It returns when the operator exits or quits.
func Run(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(), tea.WithAltScreen())
	bridge := NewBridge(p.Send)

	var (
		wg       sync.WaitGroup
		buildErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		// NewBuilder may post to the bridge, which blocks until p.Run starts.
		buildErr = cfg.NewBuilder(bridge).Run(ctx)
		p.Send(builderDoneMsg{err: buildErr})
	}()

	_, err := p.Run()
	// Release the builder if it is still waiting on the operator and stop
	// any task still running.
	bridge.Close()
	cancel()
	wg.Wait()
	if err != nil {
		return err
	}
	return buildErr
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) mode() inputMode {
	switch {
	case m.busy:
		return modeBusy
	case m.navReply != nil:
		return modeForm
	case m.promptReply != nil:
		return modePrompt
	}
	return modeIdle
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.log.Update(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case promptMsg:
		m.promptReply = msg.reply
		if msg.label == builder.PromptLabel() {
			m.formOpen = false
		}
		return m, m.input.Open(msg.label)

	case formMsg:
		m.form = msg.view
		m.navReply = msg.reply
		m.formOpen = true

	case logMsg:
		m.log.Append(m.formatEntry(msg.entry))

	case previewMsg:
		m.preview.SetContent(renderYAML(msg.text))

	case busyMsg:
		m.busy = msg.busy
		m.busyLabel = msg.label
		if msg.busy {
			m.formOpen = false
		}

	case builderDoneMsg:
		if msg.err != nil {
			m.fatalErr = msg.err.Error()
		}
		return m, tea.Quit
	}
	return m, nil
}

// handleKey routes a key press to the pending request.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.PgUp):
		m.log.PageUp()
		return m, nil
	case key.Matches(msg, keys.PgDown):
		m.log.PageDown()
		return m, nil
	case key.Matches(msg, keys.PreviewUp):
		m.preview.PageUp()
		return m, nil
	case key.Matches(msg, keys.PreviewDown):
		m.preview.PageDown()
		return m, nil
	}

	switch m.mode() {
	case modeForm:
		nav, ok := navFor(msg, len(m.form.Rows))
		if !ok {
			return m, nil
		}
		m.navReply <- nav
		m.navReply = nil
		return m, nil

	case modePrompt:
		if key.Matches(msg, keys.Confirm) {
			label := m.input.label
			value := m.input.Close()
			if label == builder.PromptLabel() && strings.TrimSpace(value) != "" {
				m.log.Append(keyDescStyle.Render("> "+value) + "\n")
			}
			m.promptReply <- value
			m.promptReply = nil
			return m, nil
		}
		return m, m.input.Update(msg)
	}
	return m, nil
}

// navFor maps a key in selection mode to a form move. Digits jump to the
// numbered field.
func navFor(msg tea.KeyMsg, rows int) (builder.Nav, bool) {
	switch {
	case key.Matches(msg, keys.Up):
		return builder.Nav{Kind: builder.NavUp}, true
	case key.Matches(msg, keys.Down):
		return builder.Nav{Kind: builder.NavDown}, true
	case key.Matches(msg, keys.Confirm):
		return builder.Nav{Kind: builder.NavConfirm}, true
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r <= '9' {
			if i := int(r - '1'); i < rows {
				return builder.Nav{Kind: builder.NavJump, Index: i}, true
			}
		}
	}
	return builder.Nav{}, false
}

// formatEntry renders one result pane entry with its status glyph.
func (m Model) formatEntry(e builder.Entry) string {
	switch e.Level {
	case builder.LevelHelp:
		return renderMarkdown(e.Text) + "\n"
	case builder.LevelError:
		return errorStyle.Render(GlyphFailed+" "+e.Text) + "\n"
	case builder.LevelResult:
		head, rest, _ := strings.Cut(e.Text, "\n")
		switch {
		case e.Failed:
			head = entryFailed.Render(GlyphFailed + " " + head)
		case e.Skipped:
			head = entrySkipped.Render(GlyphSkipped + " " + head)
		default:
			head = entryOK.Render(GlyphOK + " " + head)
		}
		if rest != "" {
			return head + "\n" + rest + "\n"
		}
		return head + "\n"
	}
	return entryInfo.Render(GlyphInfo+" "+e.Text) + "\n"
}

// layoutPanels recalculates panel dimensions based on terminal size.
func (m *Model) layoutPanels() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// header(1) + panes + input(3) + key bar(1)
	mainH := m.height - 5
	if mainH < 4 {
		mainH = 4
	}
	logW := m.width / 2
	m.log.SetSize(logW, mainH)
	m.preview.SetSize(m.width-logW, mainH)
	m.input.SetWidth(m.width)
}

// View renders the complete screen.
func (m Model) View() string {
	if m.fatalErr != "" {
		return errorStyle.Render("Fatal: " + m.fatalErr)
	}
	if m.width == 0 {
		return ""
	}

	left := m.log.View()
	if m.formOpen {
		left = m.log.render(m.form.Title, renderForm(m.form, m.log.width-4, m.log.height-3))
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, m.preview.View())

	placeholder := "waiting…"
	switch m.mode() {
	case modeBusy:
		placeholder = m.spinner.View() + " " + m.busyLabel
	case modeForm:
		placeholder = "select a field and press enter"
	}

	return m.renderHeader() + "\n" + main + "\n" + m.input.View(placeholder) + "\n" +
		keyBarStyle.Render(keyBarText(m.mode()))
}

// renderHeader builds the top header line.
func (m Model) renderHeader() string {
	left := headerStyle.Render("ansible-write") + " " + stateBadgeStyle.Render(m.mode().String())
	right := ""
	if m.busy {
		right = m.spinner.View() + " " + m.busyLabel
	}
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

