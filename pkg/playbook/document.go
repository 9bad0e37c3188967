// Package playbook defines the in-memory Ansible playbook document built by
// ansible-write, and maps it to and from the YAML play-list format.
package playbook

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTarget is the host selector of a fresh document.
const DefaultTarget = "localhost"

// Node is an entry in a task sequence: either a *Task or a *Block.
type Node interface {
	// Label is the display name used in result output.
	Label() string
	node()
}

// Keyword is a play, block or task key outside the model, such as
// register, when or handlers. It is written back as it was read and
// ignored when the task is run.
type Keyword struct {
	Key      string
	Value    *yaml.Node
	// Trailing marks a play keyword that followed the tasks list.
	Trailing bool
}

// Task is a named invocation of one module with its resolved arguments.
// Only options with a configured value appear in Args.
type Task struct {
	Name     string
	Module   string
	Args     Args
	Keywords []Keyword
}

// Label returns the task's display name.
func (t *Task) Label() string { return t.Name }

func (*Task) node() {}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := &Task{Name: t.Name, Module: t.Module}
	if len(t.Args) > 0 {
		c.Args = append(Args(nil), t.Args...)
	}
	for _, k := range t.Keywords {
		k.Value = cloneNode(k.Value)
		c.Keywords = append(c.Keywords, k)
	}
	return c
}

// Block groups a primary task sequence with rescue and always sequences.
// Block bodies hold tasks only; blocks do not nest.
type Block struct {
	Name     string
	Body     []*Task
	Rescue   []*Task
	Always   []*Task
	Keywords []Keyword
}

// Label is always "block"; block names are shown in the document preview only.
func (b *Block) Label() string { return "block" }

func (*Block) node() {}

// Section selects one of a block's task sequences.
type Section int

const (
	SectionBody Section = iota
	SectionRescue
	SectionAlways
)

func (s Section) String() string {
	switch s {
	case SectionRescue:
		return "rescue"
	case SectionAlways:
		return "always"
	default:
		return "block"
	}
}

// Add appends t to the given section.
func (b *Block) Add(s Section, t *Task) {
	switch s {
	case SectionRescue:
		b.Rescue = append(b.Rescue, t)
	case SectionAlways:
		b.Always = append(b.Always, t)
	default:
		b.Body = append(b.Body, t)
	}
}

// Document is a single play: target selector, shared environment, play
// variables and the ordered top-level node sequence.
type Document struct {
	Name        string
	Target      []string
	GatherFacts bool
	Become      bool
	Vars        Args
	Environment map[string]string
	Nodes       []Node
	Keywords    []Keyword
}

// New returns the initial document of a session.
func New() *Document {
	return &Document{
		Target:      []string{DefaultTarget},
		Environment: make(map[string]string),
	}
}

// Append adds n to the end of the top-level sequence.
func (d *Document) Append(n Node) {
	d.Nodes = append(d.Nodes, n)
}

// Replace swaps the top-level node at index i for t. Only tasks can be
// replaced.
func (d *Document) Replace(i int, t *Task) error {
	if i < 0 || i >= len(d.Nodes) {
		return fmt.Errorf("no node at position %d", i+1)
	}
	if _, ok := d.Nodes[i].(*Task); !ok {
		return fmt.Errorf("node %d is a block and cannot be edited as a task", i+1)
	}
	d.Nodes[i] = t
	return nil
}

// SetTarget replaces the host selector. Selectors are split on commas and
// whitespace; an empty selector is rejected.
func (d *Document) SetTarget(selector string) error {
	fields := strings.FieldsFunc(selector, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return fmt.Errorf("target selector is empty")
	}
	d.Target = fields
	return nil
}

// TargetPattern joins the target into an ansible host pattern.
func (d *Document) TargetPattern() string {
	if len(d.Target) == 0 {
		return DefaultTarget
	}
	return strings.Join(d.Target, ",")
}

// SetVar sets a play variable.
func (d *Document) SetVar(name string, v any) {
	d.Vars.Set(name, v)
}

// SetEnv sets a shared environment variable.
func (d *Document) SetEnv(name, value string) {
	if d.Environment == nil {
		d.Environment = make(map[string]string)
	}
	d.Environment[name] = value
}

// Counts returns the number of top-level tasks and blocks.
func (d *Document) Counts() (tasks, blocks int) {
	for _, n := range d.Nodes {
		switch n.(type) {
		case *Task:
			tasks++
		case *Block:
			blocks++
		}
	}
	return tasks, blocks
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	return &c
}
