package playbook

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// PlaySpec is the wire shape of one play, used only for schema generation.
type PlaySpec struct {
	Name        string            `json:"name,omitempty"         jsonschema:"description=Play name"`
	Hosts       HostPattern       `json:"hosts"                  jsonschema:"required"`
	GatherFacts bool              `json:"gather_facts,omitempty"`
	Become      bool              `json:"become,omitempty"`
	Vars        map[string]any    `json:"vars,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Tasks       []TaskSpec        `json:"tasks"                  jsonschema:"required"`
}

// PlayList is the top-level playbook: a list holding a single play.
type PlayList []PlaySpec

// HostPattern is a host or group selector, either a string or a list.
type HostPattern struct{}

// JSONSchema implements jsonschema's custom schema hook.
func (HostPattern) JSONSchema() *jsonschema.Schema {
	one := uint64(1)
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", MinLength: &one},
			{Type: "array", MinItems: &one, Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// TaskSpec is a task (name plus one module key) or a block wrapper.
type TaskSpec struct{}

// JSONSchema implements jsonschema's custom schema hook.
func (TaskSpec) JSONSchema() *jsonschema.Schema {
	one := uint64(1)
	inner := &jsonschema.Schema{
		Type:          "object",
		MinProperties: &one,
		Not:           &jsonschema.Schema{Required: []string{"block"}},
	}
	tasks := &jsonschema.Schema{Type: "array", Items: inner}

	blockProps := jsonschema.NewProperties()
	blockProps.Set("name", &jsonschema.Schema{Type: "string"})
	blockProps.Set("block", tasks)
	blockProps.Set("rescue", tasks)
	blockProps.Set("always", tasks)

	taskProps := jsonschema.NewProperties()
	taskProps.Set("name", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{
				Type:       "object",
				Required:   []string{"block"},
				Properties: blockProps,
			},
			{
				Type:          "object",
				MinProperties: &one,
				Properties:    taskProps,
			},
		},
	}
}

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document for the
// playbook files ansible-write reads and writes.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false
	// Plays may carry keys such as remote_user or handlers.
	r.AllowAdditionalProperties = true

	s := r.Reflect(&PlayList{})
	s.ID = "https://github.com/mahespth/ansible-write/schemas/playbook-v0.json"
	s.Title = "ansible-write playbook"
	s.Description = "Single-play Ansible playbook produced by ansible-write"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// ValidationError is a single problem found in a playbook file.
type ValidationError struct {
	Phase   string `json:"phase"` // structural, semantic, model
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// Validate checks raw playbook YAML. Phase 1 decodes the YAML, phase 2
// validates it against the generated JSON Schema, phase 3 loads it into the
// document model.
func Validate(data []byte) (*Document, []*ValidationError) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, []*ValidationError{{Phase: "structural", Message: err.Error()}}
	}
	if raw == nil {
		return nil, []*ValidationError{{Phase: "structural", Message: ErrEmptyPlaybook.Error()}}
	}
	if errs := validateSemantic(raw); len(errs) > 0 {
		return nil, errs
	}
	doc, err := Load(strings.NewReader(string(data)))
	if err != nil {
		return nil, []*ValidationError{{Phase: "model", Message: err.Error()}}
	}
	return doc, nil
}

// ValidateFile reads path and validates it. The error is set only when the
// file cannot be read.
func ValidateFile(path string) (*Document, []*ValidationError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read playbook: %w", err)
	}
	doc, errs := Validate(data)
	return doc, errs, nil
}

func validateSemantic(raw any) []*ValidationError {
	fail := func(format string, args ...any) []*ValidationError {
		return []*ValidationError{{Phase: "semantic", Message: fmt.Sprintf(format, args...)}}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fail("marshal for schema validation: %v", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail("unmarshal document: %v", err)
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return fail("generate schema: %v", err)
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fail("unmarshal schema: %v", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("playbook-v0.json", schemaDoc); err != nil {
		return fail("add schema resource: %v", err)
	}
	sch, err := c.Compile("playbook-v0.json")
	if err != nil {
		return fail("compile schema: %v", err)
	}

	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return fail("%v", err)
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, &ValidationError{
				Phase:   "semantic",
				Path:    strings.Join(cause.InstanceLocation, "/"),
				Message: fmt.Sprintf("%v", cause.ErrorKind),
			})
		}
		return errs
	}
	return nil
}

func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
