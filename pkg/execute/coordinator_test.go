package execute

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mahespth/ansible-write/pkg/playbook"
	"github.com/mahespth/ansible-write/pkg/runner"
)

// fakeRunner records invocations and fails the modules listed in fail.
type fakeRunner struct {
	calls []runner.Invocation
	fail  map[string]bool
	err   map[string]error
}

func (f *fakeRunner) Run(_ context.Context, inv runner.Invocation) (*runner.Result, error) {
	f.calls = append(f.calls, inv)
	if err := f.err[inv.Module]; err != nil {
		return nil, err
	}
	return &runner.Result{Failed: f.fail[inv.Module]}, nil
}

func blockDoc() *playbook.Document {
	doc := playbook.New()
	doc.Append(&playbook.Task{Name: "first", Module: "ping"})
	doc.Append(&playbook.Block{
		Body:   []*playbook.Task{{Name: "inner", Module: "command"}},
		Rescue: []*playbook.Task{{Name: "recover", Module: "debug"}},
	})
	doc.Append(&playbook.Task{Name: "last", Module: "setup"})
	return doc
}

func TestRunAllSkipsBlocks(t *testing.T) {
	fr := &fakeRunner{}
	var streamed []string
	c := New(fr, ReporterFunc(func(r Report) { streamed = append(streamed, r.Label) }), nil)

	reports := c.RunAll(context.Background(), blockDoc())

	want := []string{"first", "block", "last"}
	if diff := cmp.Diff(want, streamed); diff != "" {
		t.Errorf("streamed labels (-want +got):\n%s", diff)
	}
	if len(reports) != 3 || !reports[1].Skipped || reports[1].Index != 2 {
		t.Errorf("reports = %+v", reports)
	}
	var modules []string
	for _, inv := range fr.calls {
		modules = append(modules, inv.Module)
	}
	if diff := cmp.Diff([]string{"ping", "setup"}, modules); diff != "" {
		t.Errorf("block bodies must not run (-want +got):\n%s", diff)
	}
}

func TestRunAllContinuesAfterFailure(t *testing.T) {
	fr := &fakeRunner{
		fail: map[string]bool{"ping": true},
		err:  map[string]error{"setup": errors.New("ansible not installed")},
	}
	doc := playbook.New()
	doc.Append(&playbook.Task{Name: "a", Module: "ping"})
	doc.Append(&playbook.Task{Name: "b", Module: "setup"})
	doc.Append(&playbook.Task{Name: "c", Module: "debug"})

	reports := New(fr, nil, nil).RunAll(context.Background(), doc)
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	if !reports[0].Failed() || reports[0].Err != nil {
		t.Errorf("a: %+v", reports[0])
	}
	if reports[1].Err == nil || !strings.Contains(reports[1].Text(), "ansible not installed") {
		t.Errorf("b: %+v", reports[1])
	}
	if reports[2].Failed() {
		t.Errorf("c: %+v", reports[2])
	}
	if !strings.HasPrefix(reports[0].Text(), "TASK [a] failed") {
		t.Errorf("text = %q", reports[0].Text())
	}
}

func TestRunTaskReadsCurrentTarget(t *testing.T) {
	fr := &fakeRunner{}
	doc := playbook.New()
	doc.SetEnv("HTTP_PROXY", "http://proxy:3128")
	c := New(fr, nil, nil)
	task := &playbook.Task{Name: "ping", Module: "ping"}

	c.RunTask(context.Background(), doc, task)
	if err := doc.SetTarget("web, db"); err != nil {
		t.Fatal(err)
	}
	rep := c.RunTask(context.Background(), doc, task)

	if rep.Index != 0 || rep.Label != "ping" {
		t.Errorf("report = %+v", rep)
	}
	if fr.calls[0].Pattern() != "localhost" || fr.calls[1].Pattern() != "web,db" {
		t.Errorf("targets = %q, %q", fr.calls[0].Pattern(), fr.calls[1].Pattern())
	}
	if fr.calls[1].Env["HTTP_PROXY"] != "http://proxy:3128" {
		t.Errorf("env = %v", fr.calls[1].Env)
	}
}

func TestRunAllCancelled(t *testing.T) {
	fr := &fakeRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports := New(fr, nil, nil).RunAll(ctx, blockDoc())
	if len(reports) != 3 || len(fr.calls) != 0 {
		t.Fatalf("reports = %d calls = %d", len(reports), len(fr.calls))
	}
	if !errors.Is(reports[0].Err, context.Canceled) {
		t.Errorf("err = %v", reports[0].Err)
	}
}
