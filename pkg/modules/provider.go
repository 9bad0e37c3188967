// Package modules resolves an Ansible module name to its ordered option
// schema. Providers: AnsibleDoc (shells out to ansible-doc), Static (a YAML
// catalogue) and Cache (memoizes another provider).
package modules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mahespth/ansible-write/pkg/playbook"
)

var (
	// ErrModuleNotFound means the provider has no schema for the module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrProviderUnavailable means the provider itself could not be queried.
	ErrProviderUnavailable = errors.New("schema provider unavailable")
)

// Option is the metadata of one module option.
type Option struct {
	Name        string
	Description []string
	Required    bool
	Default     playbook.Value
	Type        string
	Choices     []any
}

// Summary returns the first description line, or a placeholder.
func (o Option) Summary() string {
	for _, d := range o.Description {
		if d = strings.TrimSpace(d); d != "" {
			return d
		}
	}
	return "No description provided."
}

// Prompt is the label shown when asking the operator for this option.
func (o Option) Prompt() string {
	p := fmt.Sprintf("%s (Required: %t", o.Summary(), o.Required)
	if o.Default.IsSet() {
		p += fmt.Sprintf(", Default: %s", o.Default)
	}
	return p + "): "
}

// Schema is the ordered option list of a module.
type Schema struct {
	Module  string
	Options []Option
}

// Option looks up an option by name.
func (s *Schema) Option(name string) (Option, bool) {
	for _, o := range s.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Provider resolves module schemas.
type Provider interface {
	// Options returns the schema for module. Errors wrap ErrModuleNotFound
	// or ErrProviderUnavailable.
	Options(ctx context.Context, module string) (*Schema, error)
}

// IsUnavailable reports whether err is a schema lookup failure of either kind.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrModuleNotFound) || errors.Is(err, ErrProviderUnavailable)
}
