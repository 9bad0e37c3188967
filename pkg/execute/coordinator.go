// Package execute walks a playbook document and runs its top-level tasks
// one at a time, reporting each outcome before moving on.
package execute

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mahespth/ansible-write/pkg/playbook"
	"github.com/mahespth/ansible-write/pkg/runner"
)

// BlockLabel is the display label of every block in run output.
const BlockLabel = "block"

// Report is the outcome of one top-level node.
type Report struct {
	// Index is the 1-based position in the top-level sequence; 0 for a
	// task run on its own.
	Index   int
	Label   string
	Module  string
	Result  *runner.Result
	Err     error
	Skipped bool
}

// Failed reports whether the runner could not run the task or the task failed.
func (r Report) Failed() bool {
	return r.Err != nil || (r.Result != nil && r.Result.Failed)
}

// Text renders the report for the result pane.
func (r Report) Text() string {
	var b strings.Builder
	status := "ok"
	switch {
	case r.Skipped:
		status = "skipped"
	case r.Failed():
		status = "failed"
	}
	fmt.Fprintf(&b, "TASK [%s] %s\n", r.Label, status)
	switch {
	case r.Skipped:
		b.WriteString("  block bodies are not executed here\n")
	case r.Err != nil:
		fmt.Fprintf(&b, "  error: %v\n", r.Err)
	case r.Result != nil:
		b.WriteString(r.Result.Text())
	}
	return b.String()
}

// Reporter receives each report as soon as it is produced.
type Reporter interface {
	Report(Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Report)

func (f ReporterFunc) Report(r Report) { f(r) }

// Coordinator runs document tasks through a Runner.
type Coordinator struct {
	Runner   runner.Runner
	Reporter Reporter
	Logger   *slog.Logger
}

// New returns a coordinator. reporter and logger may be nil.
func New(r runner.Runner, reporter Reporter, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{Runner: r, Reporter: reporter, Logger: logger}
}

func (c *Coordinator) emit(r Report) Report {
	if c.Reporter != nil {
		c.Reporter.Report(r)
	}
	return r
}

func (c *Coordinator) run(ctx context.Context, doc *playbook.Document, idx int, t *playbook.Task) Report {
	rep := Report{Index: idx, Label: t.Label(), Module: t.Module}
	inv := runner.Invocation{
		Target: append([]string(nil), doc.Target...),
		Module: t.Module,
		Args:   t.Args,
		Env:    doc.Environment,
	}
	res, err := c.Runner.Run(ctx, inv)
	rep.Result = res
	if err != nil {
		rep.Err = fmt.Errorf("task %q: %w", t.Name, err)
	}
	if rep.Failed() {
		c.Logger.Warn("task failed", "task", t.Name, "module", t.Module, "target", inv.Pattern(), "error", rep.Err)
	}
	return rep
}

// RunTask runs a single task against the document's current target and
// environment.
func (c *Coordinator) RunTask(ctx context.Context, doc *playbook.Document, t *playbook.Task) Report {
	return c.emit(c.run(ctx, doc, 0, t))
}

// RunAll runs every top-level task in order and returns exactly one report
// per top-level node. Blocks are reported as skipped under BlockLabel and
// their bodies are not run. A failure never stops the walk. Once ctx is
// done the remaining tasks are reported with its error instead of run.
func (c *Coordinator) RunAll(ctx context.Context, doc *playbook.Document) []Report {
	reports := make([]Report, 0, len(doc.Nodes))
	for i, n := range doc.Nodes {
		idx := i + 1
		var rep Report
		switch n := n.(type) {
		case *playbook.Task:
			if err := ctx.Err(); err != nil {
				rep = Report{Index: idx, Label: n.Label(), Module: n.Module, Err: err}
			} else {
				rep = c.run(ctx, doc, idx, n)
			}
		case *playbook.Block:
			rep = Report{Index: idx, Label: BlockLabel, Skipped: true}
		}
		reports = append(reports, c.emit(rep))
	}
	c.Logger.Info("run finished", "nodes", len(doc.Nodes), "target", doc.TargetPattern())
	return reports
}
