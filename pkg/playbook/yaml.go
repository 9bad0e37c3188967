package playbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawParamsKey holds free-form module arguments such as `shell: echo hi`.
const rawParamsKey = "_raw_params"

// playKeys are the play-level keys the document model understands. Other
// play keys are carried as Keywords.
var playKeys = map[string]bool{
	"name": true, "hosts": true, "gather_facts": true, "become": true,
	"vars": true, "environment": true, "tasks": true,
}

// taskKeywords are task-level keys that are never a module name. They are
// carried on the task as Keywords.
var taskKeywords = map[string]bool{
	"when": true, "register": true, "loop": true, "loop_control": true,
	"notify": true, "listen": true, "tags": true, "vars": true,
	"become": true, "become_user": true, "become_method": true,
	"become_flags": true, "become_exe": true, "delegate_to": true,
	"delegate_facts": true, "run_once": true, "ignore_errors": true,
	"ignore_unreachable": true, "changed_when": true, "failed_when": true,
	"until": true, "retries": true, "delay": true, "environment": true,
	"no_log": true, "args": true, "async": true, "poll": true,
	"check_mode": true, "diff": true, "timeout": true, "throttle": true,
	"any_errors_fatal": true, "connection": true, "collections": true,
	"module_defaults": true, "debugger": true, "remote_user": true,
	"port": true, "rescue": true, "always": true,
}

func isTaskKeyword(key string) bool {
	return taskKeywords[key] || strings.HasPrefix(key, "with_")
}

// Render returns the document as YAML text.
func Render(d *Document) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write encodes the document as a one-play YAML play list.
func Write(w io.Writer, d *Document) error {
	root, err := encodeDocument(d)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode playbook: %w", err)
	}
	return enc.Close()
}

// Save writes the document to path.
func Save(path string, d *Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, d); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write playbook: %w", err)
	}
	return nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func boolean(b bool) *yaml.Node {
	v := "false"
	if b {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}

func null() *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"} }

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode} }

func sequence() *yaml.Node { return &yaml.Node{Kind: yaml.SequenceNode} }

func put(m *yaml.Node, key string, v *yaml.Node) {
	m.Content = append(m.Content, str(key), v)
}

// putKeywords writes the keywords whose Trailing flag equals trailing.
func putKeywords(m *yaml.Node, kws []Keyword, trailing bool) {
	for _, k := range kws {
		if k.Trailing != trailing {
			continue
		}
		v := k.Value
		if v == nil {
			v = null()
		}
		put(m, k.Key, v)
	}
}

// valueNode encodes an argument value. Whole floats keep a decimal point so
// they load back as floats.
func valueNode(v any) (*yaml.Node, error) {
	if f, ok := v.(float64); ok && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

func encodeDocument(d *Document) (*yaml.Node, error) {
	play := mapping()
	if d.Name != "" {
		put(play, "name", str(d.Name))
	}
	if len(d.Target) == 1 {
		put(play, "hosts", str(d.Target[0]))
	} else {
		hosts := sequence()
		for _, h := range d.Target {
			hosts.Content = append(hosts.Content, str(h))
		}
		put(play, "hosts", hosts)
	}
	put(play, "gather_facts", boolean(d.GatherFacts))
	if d.Become {
		put(play, "become", boolean(true))
	}
	if len(d.Vars) > 0 {
		args, err := encodeArgs(d.Vars)
		if err != nil {
			return nil, fmt.Errorf("vars: %w", err)
		}
		put(play, "vars", args)
	}
	if len(d.Environment) > 0 {
		env := mapping()
		keys := make([]string, 0, len(d.Environment))
		for k := range d.Environment {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			put(env, k, str(d.Environment[k]))
		}
		put(play, "environment", env)
	}
	putKeywords(play, d.Keywords, false)

	tasks := sequence()
	for i, n := range d.Nodes {
		nn, err := encodeNode(n)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		tasks.Content = append(tasks.Content, nn)
	}
	put(play, "tasks", tasks)
	putKeywords(play, d.Keywords, true)

	plays := sequence()
	plays.Content = append(plays.Content, play)
	return plays, nil
}

func encodeNode(n Node) (*yaml.Node, error) {
	switch n := n.(type) {
	case *Task:
		return encodeTask(n)
	case *Block:
		m := mapping()
		if n.Name != "" {
			put(m, "name", str(n.Name))
		}
		sections := []struct {
			key   string
			tasks []*Task
			keep  bool
		}{
			{"block", n.Body, true},
			{"rescue", n.Rescue, false},
			{"always", n.Always, false},
		}
		for _, s := range sections {
			if len(s.tasks) == 0 && !s.keep {
				continue
			}
			seq := sequence()
			for _, t := range s.tasks {
				tn, err := encodeTask(t)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", s.key, err)
				}
				seq.Content = append(seq.Content, tn)
			}
			put(m, s.key, seq)
		}
		putKeywords(m, n.Keywords, false)
		return m, nil
	default:
		return nil, fmt.Errorf("unknown node type %T", n)
	}
}

func encodeTask(t *Task) (*yaml.Node, error) {
	m := mapping()
	put(m, "name", str(t.Name))
	if len(t.Args) == 1 && t.Args[0].Name == rawParamsKey {
		v, err := valueNode(t.Args[0].Value)
		if err != nil {
			return nil, err
		}
		put(m, t.Module, v)
	} else {
		args, err := encodeArgs(t.Args)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
		put(m, t.Module, args)
	}
	putKeywords(m, t.Keywords, false)
	return m, nil
}

func encodeArgs(args Args) (*yaml.Node, error) {
	m := mapping()
	for _, a := range args {
		v, err := valueNode(a.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", a.Name, err)
		}
		put(m, a.Name, v)
	}
	return m, nil
}

// ErrEmptyPlaybook is returned by Load when the input holds no document.
var ErrEmptyPlaybook = errors.New("playbook is empty")

// Load decodes a one-play YAML play list into a Document.
func Load(r io.Reader) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPlaybook
		}
		return nil, fmt.Errorf("decode playbook: %w", err)
	}
	n := &root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: playbook must be a list of plays", n.Line)
	}
	switch len(n.Content) {
	case 0:
		return nil, ErrEmptyPlaybook
	case 1:
	default:
		return nil, fmt.Errorf("line %d: only single-play playbooks are supported (found %d plays)", n.Content[1].Line, len(n.Content))
	}
	return decodePlay(n.Content[0])
}

func decodePlay(n *yaml.Node) (*Document, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: play must be a mapping", n.Line)
	}
	d := New()
	d.Target = nil
	sawTasks := false
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		if !playKeys[key] {
			d.Keywords = append(d.Keywords, Keyword{Key: key, Value: val, Trailing: sawTasks})
			continue
		}
		var err error
		switch key {
		case "name":
			err = val.Decode(&d.Name)
		case "hosts":
			d.Target, err = decodeHosts(val)
		case "gather_facts":
			err = val.Decode(&d.GatherFacts)
		case "become":
			err = val.Decode(&d.Become)
		case "vars":
			d.Vars, err = decodeArgs(val)
		case "environment":
			err = val.Decode(&d.Environment)
		case "tasks":
			sawTasks = true
			d.Nodes, err = decodeNodes(val)
		}
		if err != nil {
			return nil, fmt.Errorf("play %s: %w", key, err)
		}
	}
	if !sawTasks {
		return nil, fmt.Errorf("line %d: play has no tasks list", n.Line)
	}
	if len(d.Target) == 0 {
		d.Target = []string{DefaultTarget}
	}
	if d.Environment == nil {
		d.Environment = make(map[string]string)
	}
	return d, nil
}

func decodeHosts(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		d := &Document{}
		if err := d.SetTarget(n.Value); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return d.Target, nil
	case yaml.SequenceNode:
		var hosts []string
		if err := n.Decode(&hosts); err != nil {
			return nil, err
		}
		return hosts, nil
	default:
		return nil, fmt.Errorf("line %d: hosts must be a string or a list", n.Line)
	}
}

func decodeArgs(n *yaml.Node) (Args, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	var args Args
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v any
		if err := n.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Content[i+1].Line, err)
		}
		args = append(args, Arg{Name: n.Content[i].Value, Value: v})
	}
	return args, nil
}

func decodeNodes(n *yaml.Node) ([]Node, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: tasks must be a list", n.Line)
	}
	nodes := make([]Node, 0, len(n.Content))
	for _, c := range n.Content {
		node, err := decodeNode(c)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// moduleKey returns the first key of a task mapping that is neither "name"
// nor a task keyword. A "block" key marks a block wrapper.
func moduleKey(n *yaml.Node) (string, int) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		if k == "name" || isTaskKeyword(k) {
			continue
		}
		return k, i
	}
	return "", -1
}

func decodeNode(n *yaml.Node) (Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: task must be a mapping", n.Line)
	}
	key, _ := moduleKey(n)
	if key == "block" {
		return decodeBlock(n)
	}
	return decodeTask(n)
}

func decodeTask(n *yaml.Node) (*Task, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: task must be a mapping", n.Line)
	}
	key, idx := moduleKey(n)
	if key == "" {
		return nil, fmt.Errorf("line %d: task has no module", n.Line)
	}
	if key == "block" {
		return nil, fmt.Errorf("line %d: blocks cannot be nested", n.Line)
	}
	t := &Task{Module: key}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i].Value, n.Content[i+1]
		switch {
		case k == "name":
			if err := v.Decode(&t.Name); err != nil {
				return nil, err
			}
		case i == idx:
			if v.Kind == yaml.ScalarNode && v.Tag != "!!null" {
				var raw any
				if err := v.Decode(&raw); err != nil {
					return nil, err
				}
				t.Args = Args{{Name: rawParamsKey, Value: raw}}
				continue
			}
			args, err := decodeArgs(v)
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", key, err)
			}
			t.Args = args
		case isTaskKeyword(k):
			t.Keywords = append(t.Keywords, Keyword{Key: k, Value: v})
		default:
			return nil, fmt.Errorf("line %d: task has two modules, %q and %q", n.Content[i].Line, key, k)
		}
	}
	if t.Name == "" {
		t.Name = t.Module
	}
	return t, nil
}

func decodeBlock(n *yaml.Node) (*Block, error) {
	b := &Block{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i].Value, n.Content[i+1]
		var dst *[]*Task
		switch k {
		case "name":
			if err := v.Decode(&b.Name); err != nil {
				return nil, err
			}
			continue
		case "block":
			dst = &b.Body
		case "rescue":
			dst = &b.Rescue
		case "always":
			dst = &b.Always
		default:
			b.Keywords = append(b.Keywords, Keyword{Key: k, Value: v})
			continue
		}
		if v.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: %s must be a list", v.Line, k)
		}
		for _, c := range v.Content {
			t, err := decodeTask(c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			*dst = append(*dst, t)
		}
	}
	return b, nil
}
