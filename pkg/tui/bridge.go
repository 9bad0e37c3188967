package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mahespth/ansible-write/pkg/builder"
)

// Messages from the builder goroutine to the Bubble Tea program.
type (
	promptMsg struct {
		label string
		reply chan<- string
	}
	formMsg struct {
		view  builder.View
		reply chan<- builder.Nav
	}
	logMsg     struct{ entry builder.Entry }
	previewMsg struct{ text string }
	busyMsg    struct {
		label string
		busy  bool
	}
	// builderDoneMsg is sent when the builder loop returns.
	builderDoneMsg struct{ err error }
)

// Bridge implements builder.UI on top of a running Bubble Tea program.
// Prompt and Navigate block the calling goroutine until the model replies
// or the bridge is closed, in which case they return io.EOF.
type Bridge struct {
	send func(tea.Msg)
	done chan struct{}
	once sync.Once
}

// NewBridge returns a bridge that delivers messages through send,
// typically (*tea.Program).Send.
func NewBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send, done: make(chan struct{})}
}

// Close releases any blocked Prompt or Navigate call.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *Bridge) post(msg tea.Msg) {
	if !b.closed() {
		b.send(msg)
	}
}

// Prompt implements builder.UI.
func (b *Bridge) Prompt(label string) (string, error) {
	if b.closed() {
		return "", io.EOF
	}
	reply := make(chan string, 1)
	b.send(promptMsg{label: label, reply: reply})
	select {
	case s := <-reply:
		return s, nil
	case <-b.done:
		return "", io.EOF
	}
}

// Navigate implements builder.UI.
func (b *Bridge) Navigate(v builder.View) (builder.Nav, error) {
	if b.closed() {
		return builder.Nav{}, io.EOF
	}
	reply := make(chan builder.Nav, 1)
	b.send(formMsg{view: v, reply: reply})
	select {
	case n := <-reply:
		return n, nil
	case <-b.done:
		return builder.Nav{}, io.EOF
	}
}

// Log implements builder.UI.
func (b *Bridge) Log(e builder.Entry) { b.post(logMsg{entry: e}) }

// Preview implements builder.UI.
func (b *Bridge) Preview(text string) { b.post(previewMsg{text: text}) }

// SetBusy implements builder.Busy.
func (b *Bridge) SetBusy(label string, busy bool) { b.post(busyMsg{label: label, busy: busy}) }
