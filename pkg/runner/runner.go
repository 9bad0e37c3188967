// Package runner executes a single module invocation against a host
// selector. The Adhoc runner shells out to the ansible ad-hoc CLI with
// the json stdout callback; DryRun only reports the command it would run.
package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mahespth/ansible-write/pkg/playbook"
)

// Invocation is one task to run.
type Invocation struct {
	Target []string
	Module string
	Args   playbook.Args
	Env    map[string]string
}

// Pattern joins the target into an ansible host pattern.
func (inv Invocation) Pattern() string {
	if len(inv.Target) == 0 {
		return playbook.DefaultTarget
	}
	return strings.Join(inv.Target, ",")
}

// EnvList returns Env as sorted NAME=VALUE pairs.
func (inv Invocation) EnvList() []string {
	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+inv.Env[k])
	}
	return out
}

// Status is the per-host outcome reported by ansible.
type Status string

const (
	StatusOK          Status = "ok"
	StatusChanged     Status = "changed"
	StatusFailed      Status = "failed"
	StatusUnreachable Status = "unreachable"
	StatusSkipped     Status = "skipped"
)

// HostResult is the outcome on one host.
type HostResult struct {
	Host   string
	Status Status
	RC     int
	Msg    string
	Stdout string
	Stderr string
	// Failed is the fail_when verdict for this host.
	Failed bool
	Data   map[string]any
}

// Result is the outcome of one invocation.
type Result struct {
	Command  []string
	Hosts    []HostResult
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Failed   bool
	DryRun   bool
}

// Text renders the result for the result pane.
func (r *Result) Text() string {
	var b strings.Builder
	if r.DryRun {
		fmt.Fprintf(&b, "dry run: %s\n", strings.Join(r.Command, " "))
		return b.String()
	}
	for _, h := range r.Hosts {
		fmt.Fprintf(&b, "%s | %s", h.Host, strings.ToUpper(string(h.Status)))
		if h.RC != 0 {
			fmt.Fprintf(&b, " | rc=%d", h.RC)
		}
		b.WriteString("\n")
		if h.Msg != "" {
			fmt.Fprintf(&b, "  msg: %s\n", h.Msg)
		}
		for _, out := range []struct{ name, text string }{{"stdout", h.Stdout}, {"stderr", h.Stderr}} {
			if t := strings.TrimRight(out.text, "\n"); t != "" {
				fmt.Fprintf(&b, "  %s: %s\n", out.name, t)
			}
		}
	}
	if len(r.Hosts) == 0 {
		fmt.Fprintf(&b, "exit code %d\n", r.ExitCode)
		if t := strings.TrimSpace(r.Stderr); t != "" {
			b.WriteString(t + "\n")
		} else if t := strings.TrimSpace(r.Stdout); t != "" {
			b.WriteString(t + "\n")
		}
	}
	return b.String()
}

// Runner executes invocations. A returned error means the runner could not
// be invoked at all; task failures are reported through Result.Failed.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}
