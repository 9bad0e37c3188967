package runner

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultFailWhen marks a host failed when ansible reports it failed or
// unreachable.
const DefaultFailWhen = "failed || unreachable"

// FailWhen classifies host results with a boolean expression over
// rc, failed, changed, unreachable, skipped, msg, stdout and host.
type FailWhen struct {
	source  string
	program *vm.Program
}

func hostEnv(h HostResult) map[string]any {
	return map[string]any{
		"rc":          h.RC,
		"failed":      h.Status == StatusFailed,
		"changed":     h.Status == StatusChanged,
		"unreachable": h.Status == StatusUnreachable,
		"skipped":     h.Status == StatusSkipped,
		"msg":         h.Msg,
		"stdout":      h.Stdout,
		"host":        h.Host,
	}
}

// CompileFailWhen compiles a fail_when expression. An empty expression
// selects DefaultFailWhen.
func CompileFailWhen(source string) (*FailWhen, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultFailWhen
	}
	program, err := expr.Compile(source, expr.Env(hostEnv(HostResult{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile fail_when %q: %w", source, err)
	}
	return &FailWhen{source: source, program: program}, nil
}

// String returns the expression source.
func (f *FailWhen) String() string { return f.source }

// Failed evaluates the expression for one host.
func (f *FailWhen) Failed(h HostResult) (bool, error) {
	out, err := expr.Run(f.program, hostEnv(h))
	if err != nil {
		return false, fmt.Errorf("eval fail_when %q on %s: %w", f.source, h.Host, err)
	}
	failed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("fail_when %q did not return bool (got %T)", f.source, out)
	}
	return failed, nil
}

// Classify sets each host's verdict and the overall Failed flag. With no
// host output a non-zero exit code is a failure.
func (f *FailWhen) Classify(r *Result) error {
	r.Failed = false
	if len(r.Hosts) == 0 {
		r.Failed = r.ExitCode != 0
		return nil
	}
	for i := range r.Hosts {
		failed, err := f.Failed(r.Hosts[i])
		if err != nil {
			return err
		}
		r.Hosts[i].Failed = failed
		if failed {
			r.Failed = true
		}
	}
	return nil
}
