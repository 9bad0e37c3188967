package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
)

var (
	// ErrEmptyName is returned by Submit when the name answer is blank.
	// The existing name is kept.
	ErrEmptyName = errors.New("task name must not be empty")
	// ErrNotPrompting is returned by Submit when the field under the cursor
	// does not take text input.
	ErrNotPrompting = errors.New("field does not accept input")
	// ErrClosed is returned once the session has been accepted or cancelled.
	ErrClosed = errors.New("editing session is closed")
)

// Session is the working state of one task edit.
type Session struct {
	name     string
	module   string
	fields   []Field
	values   map[string]playbook.Value
	// extra holds arguments of an edited task that the schema does not
	// declare; they are carried through to the accepted task.
	extra    playbook.Args
	// keywords of an edited task, carried through unchanged.
	keywords []playbook.Keyword
	cursor   int
	closed   bool
}

// New starts a session for a new task. Option values are seeded from the
// schema defaults; options without a default start unset.
func New(name, module string, schema *modules.Schema) *Session {
	s := &Session{
		name:   strings.TrimSpace(name),
		module: strings.TrimSpace(module),
		fields: layout(schema),
		values: make(map[string]playbook.Value),
	}
	for _, f := range s.fields {
		if of, ok := f.(OptionField); ok {
			s.values[of.Option.Name] = of.Option.Default
		}
	}
	return s
}

// Edit reopens an existing task. Options present in the task's arguments
// take those values; the rest start unset. t is not modified.
func Edit(t *playbook.Task, schema *modules.Schema) *Session {
	t = t.Clone()
	s := &Session{
		name:     t.Name,
		module:   t.Module,
		fields:   layout(schema),
		values:   make(map[string]playbook.Value),
		keywords: t.Keywords,
	}
	declared := make(map[string]bool)
	for _, f := range s.fields {
		if of, ok := f.(OptionField); ok {
			declared[of.Option.Name] = true
			s.values[of.Option.Name] = playbook.Unset
		}
	}
	for _, arg := range t.Args {
		if declared[arg.Name] {
			s.values[arg.Name] = playbook.Of(arg.Value)
		} else {
			s.extra = append(s.extra, arg)
		}
	}
	return s
}

// Name returns the working display name.
func (s *Session) Name() string { return s.name }

// Module returns the module identifier.
func (s *Session) Module() string { return s.module }

// Fields returns the field layout.
func (s *Session) Fields() []Field { return s.fields }

// Len is the number of fields: options plus the four fixed entries.
func (s *Session) Len() int { return len(s.fields) }

// Cursor returns the index of the selected field.
func (s *Session) Cursor() int { return s.cursor }

// Current returns the selected field.
func (s *Session) Current() Field { return s.fields[s.cursor] }

// Closed reports whether the session has been accepted or cancelled.
func (s *Session) Closed() bool { return s.closed }

// MoveCursor moves the selection by delta, wrapping in both directions, and
// returns the new index.
func (s *Session) MoveCursor(delta int) int {
	n := len(s.fields)
	s.cursor = ((s.cursor+delta)%n + n) % n
	return s.cursor
}

// Select moves the cursor to index i, which must be within range.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.fields) {
		return fmt.Errorf("field %d out of range [0,%d)", i, len(s.fields))
	}
	s.cursor = i
	return nil
}

// Value returns the working value of an option.
func (s *Session) Value(option string) playbook.Value {
	return s.values[option]
}

// Display returns the text shown for a field's current value.
func (s *Session) Display(f Field) string {
	switch f := f.(type) {
	case NameField:
		return s.name
	case ModuleField:
		return s.module
	case OptionField:
		v := s.values[f.Option.Name]
		if !v.IsSet() {
			return ""
		}
		return v.String()
	default:
		return ""
	}
}

// Activate acts on the field under the cursor. Prompt results must be
// answered with Submit; Accepted and Cancelled close the session.
func (s *Session) Activate() Action {
	if s.closed {
		return Info{Message: ErrClosed.Error()}
	}
	switch f := s.Current().(type) {
	case NameField:
		return Prompt{Label: "Enter task name: ", Current: s.name}
	case ModuleField:
		return Info{Message: fmt.Sprintf("module %q cannot be changed while editing; cancel and add a new task instead", s.module)}
	case OptionField:
		return Prompt{Label: f.Option.Prompt(), Current: s.Display(f)}
	case AcceptControl:
		if s.name == "" {
			s.cursor = 0
			return Info{Message: "task name is empty; set it before accepting"}
		}
		s.closed = true
		return Accepted{Task: s.task()}
	case CancelControl:
		s.closed = true
		return Cancelled{}
	}
	return Info{Message: "unknown field"}
}

// Submit applies an answer to the prompt returned by the last Activate.
// A blank name is rejected with ErrEmptyName. A blank option answer
// restores the option's declared default, which may be unset.
func (s *Session) Submit(raw string) error {
	if s.closed {
		return ErrClosed
	}
	switch f := s.Current().(type) {
	case NameField:
		name := strings.TrimSpace(raw)
		if name == "" {
			return ErrEmptyName
		}
		s.name = name
		return nil
	case OptionField:
		if strings.TrimSpace(raw) == "" {
			s.values[f.Option.Name] = f.Option.Default
			return nil
		}
		s.values[f.Option.Name] = playbook.Of(Coerce(raw))
		return nil
	default:
		return fmt.Errorf("%s: %w", f.Key(), ErrNotPrompting)
	}
}

// Ask activates the field under the cursor and, when it prompts, obtains
// the answer from ask and submits it. It returns the action taken; a
// Submit error is returned alongside the Prompt.
func (s *Session) Ask(ask func(label string) (string, error)) (Action, error) {
	act := s.Activate()
	p, ok := act.(Prompt)
	if !ok {
		return act, nil
	}
	answer, err := ask(p.Label)
	if err != nil {
		return act, err
	}
	return act, s.Submit(answer)
}

// task materializes the accepted task: every set option in schema order,
// followed by carried-over arguments the schema does not declare.
func (s *Session) task() *playbook.Task {
	t := &playbook.Task{Name: s.name, Module: s.module}
	for _, f := range s.fields {
		of, ok := f.(OptionField)
		if !ok {
			continue
		}
		if v := s.values[of.Option.Name]; v.IsSet() {
			t.Args = append(t.Args, playbook.Arg{Name: of.Option.Name, Value: v.Raw()})
		}
	}
	t.Args = append(t.Args, s.extra...)
	t.Keywords = s.keywords
	return t
}
