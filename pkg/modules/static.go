package modules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Static serves schemas from an in-memory catalogue, typically loaded from
// a YAML file of the form:
//
//	ping:
//	  data:
//	    description: Data to return for the ping return value.
//	    default: pong
//
// YAML null or a missing default is unset; string defaults are kept as is.
type Static struct {
	schemas map[string]*Schema
	order   []string
}

// LoadStaticFile reads a module catalogue from path.
func LoadStaticFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open module catalogue: %w", err)
	}
	defer f.Close()
	return LoadStatic(f)
}

// LoadStatic parses a module catalogue.
func LoadStatic(r io.Reader) (*Static, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode module catalogue: %w", err)
	}
	s := &Static{schemas: make(map[string]*Schema)}
	if len(root.Content) == 0 {
		return s, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: module catalogue must be a mapping", top.Line)
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		name := top.Content[i].Value
		opts, err := parseOptions(top.Content[i+1], false)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
		s.Add(&Schema{Module: name, Options: opts})
	}
	return s, nil
}

// NewStatic builds a catalogue from schemas.
func NewStatic(schemas ...*Schema) *Static {
	s := &Static{schemas: make(map[string]*Schema)}
	for _, sch := range schemas {
		s.Add(sch)
	}
	return s
}

// Add registers or replaces a schema.
func (s *Static) Add(sch *Schema) {
	if _, ok := s.schemas[sch.Module]; !ok {
		s.order = append(s.order, sch.Module)
	}
	s.schemas[sch.Module] = sch
}

// Modules lists catalogue entries in file order.
func (s *Static) Modules() []string {
	return append([]string(nil), s.order...)
}

// Options implements Provider.
func (s *Static) Options(_ context.Context, module string) (*Schema, error) {
	module = strings.TrimSpace(module)
	if sch, ok := s.schemas[module]; ok {
		return sch, nil
	}
	// Short names resolve to ansible.builtin like ansible-doc does.
	if !strings.Contains(module, ".") {
		if sch, ok := s.schemas["ansible.builtin."+module]; ok {
			return sch, nil
		}
	}
	return nil, fmt.Errorf("module %q: %w", module, ErrModuleNotFound)
}

// Cache memoizes successful lookups of another provider. Failures are not
// cached so a transient provider error can be retried by the operator.
type Cache struct {
	next    Provider
	mu      sync.Mutex
	schemas map[string]*Schema
}

// NewCache wraps next.
func NewCache(next Provider) *Cache {
	return &Cache{next: next, schemas: make(map[string]*Schema)}
}

// Options implements Provider.
func (c *Cache) Options(ctx context.Context, module string) (*Schema, error) {
	c.mu.Lock()
	sch, ok := c.schemas[module]
	c.mu.Unlock()
	if ok {
		return sch, nil
	}
	sch, err := c.next.Options(ctx, module)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.schemas[module] = sch
	c.mu.Unlock()
	return sch, nil
}
