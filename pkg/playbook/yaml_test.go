package playbook

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleDocument() *Document {
	d := New()
	d.Append(&Task{Name: "check path", Module: "ansible.builtin.stat", Args: Args{
		{Name: "path", Value: "/etc/hosts"},
		{Name: "follow", Value: true},
	}})
	d.Append(&Block{
		Name:   "guarded",
		Body:   []*Task{{Name: "risky", Module: "command", Args: Args{{Name: "cmd", Value: "false"}}}},
		Rescue: []*Task{{Name: "recover", Module: "debug", Args: Args{{Name: "msg", Value: "rescued"}}}},
	})
	return d
}

func TestRenderPlayHeader(t *testing.T) {
	out, err := Render(New())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"- hosts: localhost", "gather_facts: false", "tasks: []"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderKeepsArgumentOrder(t *testing.T) {
	out, err := Render(sampleDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	pathIdx := strings.Index(out, "path: /etc/hosts")
	followIdx := strings.Index(out, "follow: true")
	if pathIdx < 0 || followIdx < 0 || pathIdx > followIdx {
		t.Errorf("arguments out of schema order:\n%s", out)
	}
	if !strings.Contains(out, "block:") || !strings.Contains(out, "rescue:") {
		t.Errorf("block structure missing:\n%s", out)
	}
	if strings.Contains(out, "always:") {
		t.Errorf("empty always section should be omitted:\n%s", out)
	}
}

func TestRenderMultipleHosts(t *testing.T) {
	d := New()
	if err := d.SetTarget("web, db"); err != nil {
		t.Fatal(err)
	}
	out, err := Render(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "hosts:\n") || !strings.Contains(out, "- web") || !strings.Contains(out, "- db") {
		t.Errorf("expected host list:\n%s", out)
	}
}

func TestRoundTrip(t *testing.T) {
	src := sampleDocument()
	src.SetVar("retries", 3)
	src.SetEnv("HTTP_PROXY", "http://proxy:3128")

	out, err := Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := Load(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Load: %v\n%s", err, out)
	}

	again, err := Render(got)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(out, again); diff != "" {
		t.Errorf("render after load differs (-first +second):\n%s", diff)
	}
	if got.Environment["HTTP_PROXY"] != "http://proxy:3128" {
		t.Errorf("environment = %v", got.Environment)
	}
	if v, _ := got.Vars.Get("retries"); v != 3 {
		t.Errorf("vars retries = %v (%T), want 3", v, v)
	}
}

func TestLoadIdentifiesBlockByFirstKey(t *testing.T) {
	src := `
- hosts: all
  tasks:
    - name: ping it
      ping:
    - block:
        - name: inner
          shell: echo hi
      rescue:
        - name: fix
          debug:
            msg: fixed
`
	d, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(d.Nodes))
	}
	task, ok := d.Nodes[0].(*Task)
	if !ok || task.Module != "ping" || len(task.Args) != 0 {
		t.Errorf("node 0 = %#v, want bare ping task", d.Nodes[0])
	}
	b, ok := d.Nodes[1].(*Block)
	if !ok {
		t.Fatalf("node 1 = %T, want *Block", d.Nodes[1])
	}
	if len(b.Body) != 1 || len(b.Rescue) != 1 {
		t.Fatalf("block body=%d rescue=%d", len(b.Body), len(b.Rescue))
	}
	if v, _ := b.Body[0].Args.Get(rawParamsKey); v != "echo hi" {
		t.Errorf("free-form args = %v", b.Body[0].Args)
	}
	if b.Label() != "block" {
		t.Errorf("label = %q", b.Label())
	}
}

func TestRoundTripKeepsKeywords(t *testing.T) {
	src := `- name: real
  hosts: all
  remote_user: deploy
  gather_facts: false
  tasks:
    - name: uptime
      command: uptime
      register: out
      changed_when: false
    - name: show
      debug:
        var: out
      when: out.rc == 0
      loop: [1, 2]
    - block:
        - name: risky
          command: /bin/false
          notify: report
      when: ansible_os_family == "Debian"
  handlers:
    - name: report
      debug:
        msg: handled
`
	d, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	uptime := d.Nodes[0].(*Task)
	if uptime.Module != "command" || len(uptime.Keywords) != 2 {
		t.Fatalf("uptime = %+v", uptime)
	}
	if uptime.Keywords[0].Key != "register" || uptime.Keywords[0].Value.Value != "out" {
		t.Errorf("keyword 0 = %+v", uptime.Keywords[0])
	}
	b := d.Nodes[2].(*Block)
	if len(b.Keywords) != 1 || b.Keywords[0].Key != "when" || len(b.Body[0].Keywords) != 1 {
		t.Errorf("block = %+v", b)
	}
	if len(d.Keywords) != 2 || d.Keywords[0].Trailing || !d.Keywords[1].Trailing {
		t.Errorf("play keywords = %+v", d.Keywords)
	}

	out, err := Render(d)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"remote_user: deploy",
		"register: out",
		"when: out.rc == 0",
		"notify: report",
		"msg: handled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "remote_user:") > strings.Index(out, "tasks:") {
		t.Errorf("remote_user should precede tasks:\n%s", out)
	}
	if strings.Index(out, "handlers:") < strings.Index(out, "tasks:") {
		t.Errorf("handlers should follow tasks:\n%s", out)
	}
	if strings.Index(out, "register: out") > strings.Index(out, "changed_when") {
		t.Errorf("task keywords out of order:\n%s", out)
	}

	again, err := Load(strings.NewReader(out))
	if err != nil {
		t.Fatalf("reload: %v\n%s", err, out)
	}
	second, err := Render(again)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(out, second); diff != "" {
		t.Errorf("render after reload differs (-first +second):\n%s", diff)
	}
}

func TestValidateAcceptsTaskKeywords(t *testing.T) {
	src := "- hosts: all\n" +
		"  remote_user: deploy\n" +
		"  tasks:\n" +
		"    - command: uptime\n" +
		"      register: out\n" +
		"    - debug: {var: out}\n" +
		"      when: out.rc == 0\n"
	doc, errs := Validate([]byte(src))
	if len(errs) > 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if tasks, _ := doc.Counts(); tasks != 2 {
		t.Errorf("tasks = %d, want 2", tasks)
	}
}

func TestFloatArgumentsStayFloats(t *testing.T) {
	d := New()
	d.Append(&Task{Name: "ratio", Module: "debug", Args: Args{
		{Name: "ratio", Value: 3.0},
		{Name: "half", Value: 0.5},
		{Name: "count", Value: 3},
	}})
	out, err := Render(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ratio: 3.0") || !strings.Contains(out, "half: 0.5") || !strings.Contains(out, "count: 3\n") {
		t.Errorf("rendered output:\n%s", out)
	}
	got, err := Load(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	want := Args{{Name: "ratio", Value: 3.0}, {Name: "half", Value: 0.5}, {Name: "count", Value: 3}}
	if diff := cmp.Diff(want, got.Nodes[0].(*Task).Args); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	d, err := Load(strings.NewReader("- hosts: all\n  tasks:\n    - command: uptime\n      register: out\n"))
	if err != nil {
		t.Fatal(err)
	}
	orig := d.Nodes[0].(*Task)
	c := orig.Clone()
	if diff := cmp.Diff(orig, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}
	c.Keywords[0].Value.Value = "changed"
	c.Args[0].Value = "hostname"
	if orig.Keywords[0].Value.Value != "out" || orig.Args[0].Value != "uptime" {
		t.Errorf("clone shares state with the original: %+v", orig)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty"},
		{"not a list", "hosts: all", "list of plays"},
		{"two plays", "- hosts: a\n  tasks: []\n- hosts: b\n  tasks: []\n", "single-play"},
		{"no tasks", "- hosts: a\n", "no tasks"},
		{"nested block", "- hosts: a\n  tasks:\n    - block:\n        - block: []\n", "nested"},
		{"two modules", "- hosts: a\n  tasks:\n    - name: x\n      when: y\n      ping:\n      setup:\n", "two modules"},
		{"no module", "- hosts: a\n  tasks:\n    - name: x\n      register: y\n", "no module"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestReplaceOnlyTasks(t *testing.T) {
	d := sampleDocument()
	if err := d.Replace(0, &Task{Name: "new", Module: "ping"}); err != nil {
		t.Fatalf("Replace task: %v", err)
	}
	if d.Nodes[0].Label() != "new" {
		t.Errorf("label = %q", d.Nodes[0].Label())
	}
	if err := d.Replace(1, &Task{Name: "x", Module: "ping"}); err == nil {
		t.Error("expected error replacing a block")
	}
	if err := d.Replace(5, &Task{Name: "x", Module: "ping"}); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestSetTargetRejectsEmpty(t *testing.T) {
	d := New()
	if err := d.SetTarget(" , "); err == nil {
		t.Error("expected error for empty selector")
	}
	if d.TargetPattern() != DefaultTarget {
		t.Errorf("target changed to %q", d.TargetPattern())
	}
}
