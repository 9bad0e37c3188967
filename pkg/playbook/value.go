package playbook

import "fmt"

// Value is an option value that distinguishes "not configured" from any
// genuine value, including the empty string and the string "null".
// The zero Value is Unset.
type Value struct {
	v   any
	set bool
}

// Unset is the marker for an option with no configured value.
var Unset = Value{}

// Of wraps v as a set value. A nil v is still a set value; use Unset for
// "not configured".
func Of(v any) Value {
	return Value{v: v, set: true}
}

// IsSet reports whether the value was configured.
func (v Value) IsSet() bool { return v.set }

// Raw returns the underlying value, or nil when unset.
func (v Value) Raw() any { return v.v }

// String renders the value for prompts and logs.
func (v Value) String() string {
	if !v.set {
		return "<unset>"
	}
	if v.v == nil {
		return "null"
	}
	return fmt.Sprint(v.v)
}

// Arg is a single named argument on a task.
type Arg struct {
	Name  string
	Value any
}

// Args is an ordered argument mapping. Order follows the module schema so
// the rendered document is stable between edits.
type Args []Arg

// Get returns the value for name.
func (a Args) Get(name string) (any, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for name or appends it.
func (a *Args) Set(name string, v any) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, Arg{Name: name, Value: v})
}

// Map returns the arguments as a plain map (used for JSON encoding).
func (a Args) Map() map[string]any {
	m := make(map[string]any, len(a))
	for _, arg := range a {
		m[arg.Name] = arg.Value
	}
	return m
}
