package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
)

// Handlers holds the dependencies of the tools that need them.
type Handlers struct {
	Provider modules.Provider
}

type optionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Type        string `json:"type,omitempty"`
	Choices     []any  `json:"choices,omitempty"`
}

// HandleModuleOptions implements the module_options tool.
func (h *Handlers) HandleModuleOptions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	module, _ := args["module"].(string)
	if module = strings.TrimSpace(module); module == "" {
		return errorResult("module argument is required"), nil
	}
	if h.Provider == nil {
		return errorResult("no module schema provider configured"), nil
	}

	schema, err := h.Provider.Options(ctx, module)
	if err != nil {
		if errors.Is(err, modules.ErrModuleNotFound) {
			return errorResult(fmt.Sprintf("module %q not found", module)), nil
		}
		return errorResult(err.Error()), nil
	}

	opts := make([]optionInfo, 0, len(schema.Options))
	for _, o := range schema.Options {
		info := optionInfo{
			Name:        o.Name,
			Description: o.Summary(),
			Required:    o.Required,
			Type:        o.Type,
			Choices:     o.Choices,
		}
		if o.Default.IsSet() {
			info.Default = o.Default.Raw()
		}
		opts = append(opts, info)
	}
	data, err := json.MarshalIndent(map[string]any{
		"module":  schema.Module,
		"options": opts,
	}, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleValidate implements the validate_playbook tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)

	var (
		doc  *playbook.Document
		errs []*playbook.ValidationError
	)
	switch {
	case path != "":
		var err error
		doc, errs, err = playbook.ValidateFile(path)
		if err != nil {
			return errorResult(err.Error()), nil
		}
	case content != "":
		doc, errs = playbook.Validate([]byte(content))
	default:
		return errorResult("path or content argument is required"), nil
	}

	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return errorResult(strings.Join(msgs, "; ")), nil
	}
	tasks, blocks := doc.Counts()
	return textResult(fmt.Sprintf("✓ playbook is valid (hosts %s, %d task(s), %d block(s))",
		doc.TargetPattern(), tasks, blocks)), nil
}

// HandleSchema implements the playbook_schema tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := playbook.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
