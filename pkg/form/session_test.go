package form

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
	"gopkg.in/yaml.v3"
)

func waitForSchema() *modules.Schema {
	return &modules.Schema{
		Module: "wait_for",
		Options: []modules.Option{
			{Name: "timeout", Description: []string{"Seconds to wait."}, Default: playbook.Of(30)},
			{Name: "path", Description: []string{"Path to a file."}},
			{Name: "host", Description: []string{"Host to poll."}, Required: true},
		},
	}
}

// selectKey moves the cursor to the field with the given key.
func selectKey(t *testing.T, s *Session, key string) {
	t.Helper()
	for i, f := range s.Fields() {
		if f.Key() == key {
			if err := s.Select(i); err != nil {
				t.Fatal(err)
			}
			return
		}
	}
	t.Fatalf("no field %q", key)
}

func accept(t *testing.T, s *Session) *playbook.Task {
	t.Helper()
	selectKey(t, s, "accept")
	act, ok := s.Activate().(Accepted)
	if !ok {
		t.Fatalf("Activate on accept did not accept")
	}
	return act.Task
}

func TestNewSeedsDefaults(t *testing.T) {
	s := New("wait", "wait_for", waitForSchema())
	if v := s.Value("timeout"); !v.IsSet() || v.Raw() != 30 {
		t.Errorf("timeout = %v, want 30", v)
	}
	for _, name := range []string{"path", "host"} {
		if s.Value(name).IsSet() {
			t.Errorf("%s should start unset", name)
		}
	}
}

func TestLayout(t *testing.T) {
	s := New("wait", "wait_for", waitForSchema())
	var keys []string
	for _, f := range s.Fields() {
		keys = append(keys, f.Key())
	}
	want := []string{"name", "module", "timeout", "path", "host", "accept", "cancel"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("layout (-want +got):\n%s", diff)
	}
	if _, ok := s.Fields()[2].(OptionField); !ok {
		t.Errorf("field 2 is %T, want OptionField", s.Fields()[2])
	}
}

func TestMoveCursorWraps(t *testing.T) {
	for n := 0; n <= 5; n++ {
		sch := &modules.Schema{Module: "m"}
		for i := 0; i < n; i++ {
			sch.Options = append(sch.Options, modules.Option{Name: string(rune('a' + i))})
		}
		s := New("t", "m", sch)
		if got := s.MoveCursor(-1); got != n+3 {
			t.Errorf("n=%d: MoveCursor(-1) from 0 = %d, want %d", n, got, n+3)
		}
		s.MoveCursor(1)
		seen := make(map[int]bool)
		for i := 0; i < 3*(n+4); i++ {
			seen[s.MoveCursor(1)] = true
		}
		if len(seen) != n+4 {
			t.Errorf("n=%d: visited %d positions, want %d", n, len(seen), n+4)
		}
		before := s.Cursor()
		if s.MoveCursor(n+4) != before {
			t.Errorf("n=%d: full cycle should return to the same index", n)
		}
	}
}

func TestAcceptUntouched(t *testing.T) {
	task := accept(t, New("wait", "wait_for", waitForSchema()))
	want := &playbook.Task{
		Name:   "wait",
		Module: "wait_for",
		Args:   playbook.Args{{Name: "timeout", Value: 30}},
	}
	if diff := cmp.Diff(want, task); diff != "" {
		t.Errorf("task (-want +got):\n%s", diff)
	}
}

func TestAcceptRequiredUnset(t *testing.T) {
	task := accept(t, New("wait", "wait_for", waitForSchema()))
	if _, ok := task.Args.Get("host"); ok {
		t.Errorf("host should be omitted, got %v", task.Args)
	}
}

func TestOptionSubmit(t *testing.T) {
	s := New("wait", "wait_for", waitForSchema())
	selectKey(t, s, "timeout")

	p, ok := s.Activate().(Prompt)
	if !ok {
		t.Fatal("option activation should prompt")
	}
	if p.Label != "Seconds to wait. (Required: false, Default: 30): " {
		t.Errorf("label = %q", p.Label)
	}
	if err := s.Submit("45"); err != nil {
		t.Fatal(err)
	}
	if s.Value("timeout").Raw() != 45 {
		t.Errorf("timeout = %v", s.Value("timeout"))
	}

	// Blank restores the default.
	s.Activate()
	if err := s.Submit("  "); err != nil {
		t.Fatal(err)
	}
	if s.Value("timeout").Raw() != 30 {
		t.Errorf("blank answer should restore default, got %v", s.Value("timeout"))
	}

	selectKey(t, s, "path")
	s.Activate()
	s.Submit("/tmp/ready")
	selectKey(t, s, "path")
	s.Activate()
	s.Submit("")
	if s.Value("path").IsSet() {
		t.Errorf("blank answer on an option without default should unset it")
	}
}

func TestNameRejectsEmpty(t *testing.T) {
	s := New("wait", "wait_for", waitForSchema())
	act, err := s.Ask(func(string) (string, error) { return "   ", nil })
	if _, ok := act.(Prompt); !ok {
		t.Fatalf("action = %T, want Prompt", act)
	}
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
	if s.Name() != "wait" {
		t.Errorf("name changed to %q", s.Name())
	}

	if _, err := s.Ask(func(string) (string, error) { return " renamed ", nil }); err != nil {
		t.Fatal(err)
	}
	if s.Name() != "renamed" {
		t.Errorf("name = %q", s.Name())
	}
}

func TestAcceptWithEmptyNameRefuses(t *testing.T) {
	s := New("", "ping", &modules.Schema{Module: "ping"})
	selectKey(t, s, "accept")
	if _, ok := s.Activate().(Info); !ok {
		t.Fatal("accept with empty name should not produce a task")
	}
	if s.Cursor() != 0 || s.Closed() {
		t.Errorf("cursor = %d closed = %t", s.Cursor(), s.Closed())
	}
}

func TestModuleIsFixed(t *testing.T) {
	s := New("wait", "wait_for", waitForSchema())
	s.Select(1)
	if _, ok := s.Activate().(Info); !ok {
		t.Fatal("module activation should be informational")
	}
	if err := s.Submit("ping"); !errors.Is(err, ErrNotPrompting) {
		t.Errorf("err = %v, want ErrNotPrompting", err)
	}
	if s.Module() != "wait_for" {
		t.Errorf("module = %q", s.Module())
	}
}

func TestCancel(t *testing.T) {
	s := New("wait", "wait_for", waitForSchema())
	selectKey(t, s, "cancel")
	if _, ok := s.Activate().(Cancelled); !ok {
		t.Fatal("cancel should return Cancelled")
	}
	if err := s.Submit("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestEditKeepsUndeclaredArgs(t *testing.T) {
	orig := &playbook.Task{
		Name:   "wait",
		Module: "wait_for",
		Args:   playbook.Args{{Name: "host", Value: "db1"}, {Name: "delay", Value: 5}},
	}
	s := Edit(orig, waitForSchema())
	if s.Value("timeout").IsSet() {
		t.Error("timeout was not in the task and should be unset")
	}
	if s.Value("host").Raw() != "db1" {
		t.Errorf("host = %v", s.Value("host"))
	}
	task := accept(t, s)
	want := playbook.Args{{Name: "host", Value: "db1"}, {Name: "delay", Value: 5}}
	if diff := cmp.Diff(want, task.Args); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}
}

func TestEditKeepsKeywords(t *testing.T) {
	kw := playbook.Keyword{Key: "register", Value: &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "out"}}
	orig := &playbook.Task{
		Name:     "wait",
		Module:   "wait_for",
		Args:     playbook.Args{{Name: "host", Value: "db1"}},
		Keywords: []playbook.Keyword{kw},
	}
	s := Edit(orig, waitForSchema())
	selectKey(t, s, "timeout")
	if err := s.Submit("5"); err != nil {
		t.Fatal(err)
	}
	task := accept(t, s)
	if diff := cmp.Diff([]playbook.Keyword{kw}, task.Keywords); diff != "" {
		t.Errorf("keywords (-want +got):\n%s", diff)
	}
	if len(orig.Args) != 1 {
		t.Errorf("original task modified: %+v", orig.Args)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"fAlSe", false},
		{"42", 42},
		{"-7", -7},
		{" 8 ", 8},
		{"3.5", 3.5},
		{"1e3", 1000.0},
		{"inf", "inf"},
		{"NaN", "NaN"},
		{"0x10", "0x10"},
		{"1_000", "1_000"},
		{"yes", "yes"},
		{"", ""},
		{"null", "null"},
		{"  hello  ", "hello"},
		{"\tdb1 db2\n", "db1 db2"},
	}
	for _, tt := range tests {
		got := Coerce(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Coerce(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []any{"true", "False", "12", "1.25", "text", true, 3, 2.5, int64(9), float32(0.5), uint8(1), int64(math.MaxInt64)}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Normalize(%#v) not idempotent (-once +twice):\n%s", in, diff)
		}
	}
	for _, raw := range []string{"true", "7", "7.5", "word"} {
		if diff := cmp.Diff(Coerce(raw), Normalize(Coerce(raw))); diff != "" {
			t.Errorf("coerce(coerce(%q)) differs:\n%s", raw, diff)
		}
	}
}
