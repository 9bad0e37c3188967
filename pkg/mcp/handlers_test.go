package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
)

func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", r.Content[0])
	}
	return tc.Text
}

func testHandlers() *Handlers {
	return &Handlers{Provider: modules.NewStatic(&modules.Schema{
		Module: "wait_for",
		Options: []modules.Option{
			{Name: "host", Description: []string{"Host to poll."}, Required: true},
			{Name: "timeout", Description: []string{"Seconds to wait."}, Default: playbook.Of(300), Type: "int"},
		},
	})}
}

func TestHandleModuleOptions(t *testing.T) {
	result, err := testHandlers().HandleModuleOptions(context.Background(), request(map[string]any{"module": "wait_for"}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	var got struct {
		Module  string
		Options []optionInfo
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Module != "wait_for" || len(got.Options) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Options[0].Name != "host" || !got.Options[0].Required || got.Options[0].Default != nil {
		t.Errorf("host = %+v", got.Options[0])
	}
	// JSON numbers decode as float64.
	if got.Options[1].Default != float64(300) {
		t.Errorf("timeout default = %v", got.Options[1].Default)
	}
}

func TestHandleModuleOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		h    *Handlers
		args map[string]any
		want string
	}{
		{"missing module", testHandlers(), map[string]any{}, "required"},
		{"unknown module", testHandlers(), map[string]any{"module": "nope"}, `"nope" not found`},
		{"no provider", &Handlers{}, map[string]any{"module": "ping"}, "no module schema provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.h.HandleModuleOptions(context.Background(), request(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !result.IsError {
				t.Fatal("expected error result")
			}
			if got := resultText(t, result); !strings.Contains(got, tt.want) {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleValidate_MissingInput(t *testing.T) {
	result, err := HandleValidate(context.Background(), request(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing path and content")
	}
}

func TestHandleValidate_File(t *testing.T) {
	result, err := HandleValidate(context.Background(), request(map[string]any{
		"path": filepath.Join("..", "..", "testdata", "playbooks", "site.yml"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("site.yml rejected: %s", resultText(t, result))
	}
	if got := resultText(t, result); !strings.Contains(got, "hosts web,db") {
		t.Errorf("summary = %q", got)
	}
}

func TestHandleValidate_Content(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("- hosts: all\n  tasks: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := HandleValidate(context.Background(), request(map[string]any{"path": path}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Errorf("invalid playbook accepted: %s", resultText(t, result))
	}

	result, err = HandleValidate(context.Background(), request(map[string]any{
		"content": "- hosts: localhost\n  tasks:\n    - name: Ping\n      ping:\n",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Errorf("valid content rejected: %s", resultText(t, result))
	}
}

func TestHandleValidate_TaskKeywords(t *testing.T) {
	result, err := HandleValidate(context.Background(), request(map[string]any{
		"content": "- hosts: all\n  remote_user: deploy\n  tasks:\n" +
			"    - command: uptime\n      register: out\n" +
			"    - debug: {var: out}\n      when: out.rc == 0\n",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("playbook with task keywords rejected: %s", resultText(t, result))
	}
	if got := resultText(t, result); !strings.Contains(got, "2 task(s)") {
		t.Errorf("summary = %q", got)
	}
}

func TestHandleSchema(t *testing.T) {
	result, err := HandleSchema(context.Background(), request(nil))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("schema error: %s", resultText(t, result))
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &schema); err != nil {
		t.Errorf("schema is not JSON: %v", err)
	}
}

func TestNewServer(t *testing.T) {
	if s := NewServer("test", testHandlers().Provider); s == nil {
		t.Fatal("nil server")
	}
}
