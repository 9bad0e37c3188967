// Package form is the schema-driven task editor. A Session lays out the
// fields [name, module, option₁..optionₙ, Accept, Cancel] for one module,
// tracks a cursor over them and turns the operator's answers into a
// finished playbook task.
package form

import (
	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
)

// Field is one selectable entry of an editing session.
type Field interface {
	// Key identifies the field in views: "name", "module", the option name,
	// "accept" or "cancel".
	Key() string
	field()
}

// NameField edits the task's display name.
type NameField struct{}

// ModuleField shows the module; it cannot be changed once the session exists.
type ModuleField struct{}

// OptionField edits one module option.
type OptionField struct {
	Option modules.Option
}

// AcceptControl finishes the session and produces the task.
type AcceptControl struct{}

// CancelControl abandons the session.
type CancelControl struct{}

func (NameField) Key() string     { return "name" }
func (ModuleField) Key() string   { return "module" }
func (f OptionField) Key() string { return f.Option.Name }
func (AcceptControl) Key() string { return "accept" }
func (CancelControl) Key() string { return "cancel" }

func (NameField) field()     {}
func (ModuleField) field()   {}
func (OptionField) field()   {}
func (AcceptControl) field() {}
func (CancelControl) field() {}

// layout returns the fixed field order for a schema.
func layout(schema *modules.Schema) []Field {
	var opts []modules.Option
	if schema != nil {
		opts = schema.Options
	}
	fields := make([]Field, 0, len(opts)+4)
	fields = append(fields, NameField{}, ModuleField{})
	for _, o := range opts {
		fields = append(fields, OptionField{Option: o})
	}
	return append(fields, AcceptControl{}, CancelControl{})
}

// Action is the outcome of activating the field under the cursor.
type Action interface {
	action()
}

// Prompt asks the operator for one line of text, to be passed to Submit.
type Prompt struct {
	Label string
	// Current is the value shown as the existing answer, empty when unset.
	Current string
}

// Info is a message with no state change.
type Info struct {
	Message string
}

// Accepted carries the finished task. The session is closed.
type Accepted struct {
	Task *playbook.Task
}

// Cancelled means the session was abandoned. The session is closed.
type Cancelled struct{}

func (Prompt) action()    {}
func (Info) action()      {}
func (Accepted) action()  {}
func (Cancelled) action() {}
