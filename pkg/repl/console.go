// Package repl is the line-mode frontend of ansible-write. It implements
// builder.UI on a readline prompt for terminals where the full-screen
// interface is unwanted.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mahespth/ansible-write/pkg/builder"
)

// lineReader is the part of *readline.Instance the console uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Console implements builder.UI on a line reader.
type Console struct {
	rl     lineReader
	output io.Writer
	closer io.Closer
}

// New opens a readline console on the terminal with completion for the
// builder's command words.
func New() (*Console, error) {
	completer := readline.NewPrefixCompleter()
	for _, name := range builder.CommandNames() {
		completer.Children = append(completer.Children, readline.PcItem(name))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return &Console{rl: rl, output: os.Stdout, closer: rl}, nil
}

// NewWithIO returns a console reading lines from in and writing to out,
// without line editing.
func NewWithIO(in io.Reader, out io.Writer) *Console {
	return &Console{rl: &plainReader{in: bufio.NewReader(in), out: out}, output: out}
}

// Close releases the terminal.
func (c *Console) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Prompt implements builder.UI. Ctrl-C ends the session like EOF.
func (c *Console) Prompt(label string) (string, error) {
	c.rl.SetPrompt(label)
	line, err := c.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

// Navigate implements builder.UI. The form is printed as a numbered list;
// an empty line confirms the selected field, k/j or up/down move and a
// number selects that field.
func (c *Console) Navigate(v builder.View) (builder.Nav, error) {
	c.printForm(v)
	for {
		line, err := c.Prompt("select [enter=confirm, k/j=move, n=field]: ")
		if err != nil {
			return builder.Nav{}, err
		}
		if nav, ok := parseNav(line, len(v.Rows)); ok {
			return nav, nil
		}
		fmt.Fprintf(c.output, "Unknown selection %q.\n", strings.TrimSpace(line))
	}
}

func parseNav(line string, rows int) (builder.Nav, bool) {
	switch s := strings.ToLower(strings.TrimSpace(line)); s {
	case "":
		return builder.Nav{Kind: builder.NavConfirm}, true
	case "k", "up":
		return builder.Nav{Kind: builder.NavUp}, true
	case "j", "down":
		return builder.Nav{Kind: builder.NavDown}, true
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > rows {
			return builder.Nav{}, false
		}
		return builder.Nav{Kind: builder.NavJump, Index: n - 1}, true
	}
}

func (c *Console) printForm(v builder.View) {
	fmt.Fprintf(c.output, "\n%s\n", v.Title)
	for i, r := range v.Rows {
		marker := " "
		if i == v.Cursor {
			marker = ">"
		}
		if r.Control {
			fmt.Fprintf(c.output, "%s %2d  [%s]\n", marker, i+1, r.Label)
			continue
		}
		label := r.Label
		if r.Required {
			label += "*"
		}
		value := r.Value
		if value == "" && r.Key != "name" && r.Key != "module" {
			value = "<unset>"
		}
		fmt.Fprintf(c.output, "%s %2d  %-20s %s\n", marker, i+1, label, value)
	}
	if v.Message != "" {
		fmt.Fprintf(c.output, "%s\n", v.Message)
	}
}

// Log implements builder.UI.
func (c *Console) Log(e builder.Entry) {
	switch e.Level {
	case builder.LevelError:
		fmt.Fprintf(c.output, "Error: %s\n", e.Text)
	default:
		fmt.Fprintln(c.output, strings.TrimRight(e.Text, "\n"))
	}
}

// Preview implements builder.UI.
func (c *Console) Preview(text string) {
	fmt.Fprintf(c.output, "--- playbook ---\n%s", text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(c.output)
	}
}

// plainReader reads newline-terminated lines, echoing the prompt.
type plainReader struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

func (p *plainReader) SetPrompt(prompt string) { p.prompt = prompt }

func (p *plainReader) Readline() (string, error) {
	fmt.Fprint(p.out, p.prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
