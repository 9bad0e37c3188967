package runner

import (
	"context"
	"log/slog"
)

// DryRun reports the ad-hoc command line for each invocation without
// executing anything.
type DryRun struct {
	Adhoc *Adhoc
}

// NewDryRun creates a dry-run runner that formats commands like adhoc.
func NewDryRun(adhoc *Adhoc) *DryRun {
	if adhoc == nil {
		adhoc = &Adhoc{Binary: "ansible", Logger: slog.New(slog.DiscardHandler)}
	}
	return &DryRun{Adhoc: adhoc}
}

// Run implements Runner.
func (d *DryRun) Run(_ context.Context, inv Invocation) (*Result, error) {
	args, err := d.Adhoc.commandArgs(inv)
	if err != nil {
		return nil, err
	}
	cmd := append(inv.EnvList(), d.Adhoc.Binary)
	d.Adhoc.Logger.Info("dry run", "module", inv.Module, "target", inv.Pattern())
	return &Result{Command: append(cmd, args...), DryRun: true}, nil
}
