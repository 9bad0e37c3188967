// Package mcp exposes module option lookup, playbook validation and the
// playbook JSON Schema as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mahespth/ansible-write/pkg/modules"
)

// NewServer creates an MCP server with the ansible-write tools registered.
// provider answers module_options.
func NewServer(version string, provider modules.Provider) *server.MCPServer {
	s := server.NewMCPServer(
		"ansible-write",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{Provider: provider}

	s.AddTool(
		mcp.NewTool("ansible-write/module_options",
			mcp.WithDescription("List the options of an Ansible module in documentation order"),
			mcp.WithString("module", mcp.Required(), mcp.Description("Module name, e.g. ping or ansible.builtin.copy")),
		),
		h.HandleModuleOptions,
	)

	s.AddTool(
		mcp.NewTool("ansible-write/validate_playbook",
			mcp.WithDescription("Validate a single-play playbook file or YAML content"),
			mcp.WithString("path", mcp.Description("Path to the playbook YAML file")),
			mcp.WithString("content", mcp.Description("Playbook YAML, used when path is empty")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("ansible-write/playbook_schema",
			mcp.WithDescription("Export the JSON Schema of playbooks accepted by import"),
		),
		HandleSchema,
	)

	return s
}
