package modules

import (
	"fmt"
	"strings"

	"github.com/mahespth/ansible-write/pkg/playbook"
	"gopkg.in/yaml.v3"
)

// legacyUnsetTokens are textual defaults ansible-doc uses to mean "no
// default". They are only honoured for ansible-doc output.
var legacyUnsetTokens = map[string]bool{
	"null":    true,
	"none":    true,
	"not set": true,
}

// lookup returns the value node for key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// parseOptions converts an option mapping into ordered Options.
func parseOptions(n *yaml.Node, legacyTokens bool) ([]Option, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: options must be a mapping", n.Line)
	}
	opts := make([]Option, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		opt, err := parseOption(n.Content[i].Value, n.Content[i+1], legacyTokens)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func parseOption(name string, n *yaml.Node, legacyTokens bool) (Option, error) {
	opt := Option{Name: name}
	if isNull(n) {
		return opt, nil
	}
	if n.Kind != yaml.MappingNode {
		return opt, fmt.Errorf("option %q: line %d: expected a mapping", name, n.Line)
	}

	if d := lookup(n, "description"); !isNull(d) {
		switch d.Kind {
		case yaml.ScalarNode:
			opt.Description = []string{d.Value}
		case yaml.SequenceNode:
			if err := d.Decode(&opt.Description); err != nil {
				return opt, fmt.Errorf("option %q description: %w", name, err)
			}
		}
	}
	if r := lookup(n, "required"); !isNull(r) {
		if err := r.Decode(&opt.Required); err != nil {
			return opt, fmt.Errorf("option %q required: %w", name, err)
		}
	}
	if t := lookup(n, "type"); !isNull(t) {
		opt.Type = t.Value
	}
	if c := lookup(n, "choices"); !isNull(c) && c.Kind == yaml.SequenceNode {
		if err := c.Decode(&opt.Choices); err != nil {
			return opt, fmt.Errorf("option %q choices: %w", name, err)
		}
	}

	def, err := parseDefault(lookup(n, "default"), legacyTokens)
	if err != nil {
		return opt, fmt.Errorf("option %q default: %w", name, err)
	}
	opt.Default = def
	return opt, nil
}

func parseDefault(n *yaml.Node, legacyTokens bool) (playbook.Value, error) {
	if isNull(n) {
		return playbook.Unset, nil
	}
	if legacyTokens && n.Kind == yaml.ScalarNode && n.Tag == "!!str" &&
		legacyUnsetTokens[strings.ToLower(strings.TrimSpace(n.Value))] {
		return playbook.Unset, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return playbook.Unset, err
	}
	return playbook.Of(v), nil
}
