package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mahespth/ansible-write/pkg/providers"
)

// Adhoc runs a task with `ansible <pattern> -m <module> -a <args>` and
// parses the json stdout callback.
type Adhoc struct {
	Executor providers.CommandExecutor
	// Binary defaults to "ansible".
	Binary    string
	Inventory string
	FailWhen  *FailWhen
	Logger    *slog.Logger
}

// NewAdhoc creates an ad-hoc runner. A nil failWhen uses DefaultFailWhen.
func NewAdhoc(executor providers.CommandExecutor, binary, inventory string, failWhen *FailWhen, logger *slog.Logger) (*Adhoc, error) {
	if binary == "" {
		binary = "ansible"
	}
	if failWhen == nil {
		fw, err := CompileFailWhen("")
		if err != nil {
			return nil, err
		}
		failWhen = fw
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adhoc{Executor: executor, Binary: binary, Inventory: inventory, FailWhen: failWhen, Logger: logger}, nil
}

// callbackEnv selects the json stdout callback for ad-hoc commands.
var callbackEnv = []string{
	"ANSIBLE_LOAD_CALLBACK_PLUGINS=1",
	"ANSIBLE_STDOUT_CALLBACK=json",
}

// commandArgs builds the ansible argument list for inv.
func (a *Adhoc) commandArgs(inv Invocation) ([]string, error) {
	args := []string{inv.Pattern()}
	if a.Inventory != "" {
		args = append(args, "-i", a.Inventory)
	}
	args = append(args, "-m", inv.Module)
	moduleArgs, err := encodeModuleArgs(inv)
	if err != nil {
		return nil, err
	}
	if moduleArgs != "" {
		args = append(args, "-a", moduleArgs)
	}
	return args, nil
}

// encodeModuleArgs renders arguments as a JSON object, or the bare string
// for free-form modules.
func encodeModuleArgs(inv Invocation) (string, error) {
	if len(inv.Args) == 0 {
		return "", nil
	}
	if len(inv.Args) == 1 && inv.Args[0].Name == "_raw_params" {
		return fmt.Sprint(inv.Args[0].Value), nil
	}
	data, err := json.Marshal(inv.Args.Map())
	if err != nil {
		return "", fmt.Errorf("encode arguments for %s: %w", inv.Module, err)
	}
	return string(data), nil
}

// Run implements Runner.
func (a *Adhoc) Run(ctx context.Context, inv Invocation) (*Result, error) {
	args, err := a.commandArgs(inv)
	if err != nil {
		return nil, err
	}
	env := append(append([]string(nil), callbackEnv...), inv.EnvList()...)

	a.Logger.Info("running task", "module", inv.Module, "target", inv.Pattern())
	res, err := a.Executor.Execute(ctx, a.Binary, args, env)
	if err != nil {
		if providers.IsExecNotFound(err) {
			return nil, fmt.Errorf("%s is not installed or not on PATH: %w", a.Binary, err)
		}
		return nil, fmt.Errorf("run %s: %w", a.Binary, err)
	}

	r := &Result{
		Command:  append([]string{a.Binary}, args...),
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
		ExitCode: res.ExitCode,
		Duration: res.Duration,
	}
	hosts, perr := parseCallback(res.Stdout)
	if perr != nil {
		a.Logger.Debug("callback output not parsed", "module", inv.Module, "error", perr)
	}
	r.Hosts = hosts
	if err := a.FailWhen.Classify(r); err != nil {
		return nil, err
	}
	a.Logger.Info("task finished", "module", inv.Module, "target", inv.Pattern(),
		"exit_code", r.ExitCode, "failed", r.Failed, "duration", r.Duration)
	return r, nil
}

type callbackDoc struct {
	Plays []struct {
		Tasks []struct {
			Hosts map[string]map[string]any `json:"hosts"`
		} `json:"tasks"`
	} `json:"plays"`
}

// parseCallback extracts per-host results from json callback output.
// Hosts are returned sorted by name within each task.
func parseCallback(out []byte) ([]HostResult, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}
	// Warnings can precede the document on stdout.
	if i := bytes.IndexByte(out, '{'); i > 0 {
		out = out[i:]
	}
	var doc callbackDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("decode json callback: %w", err)
	}
	var hosts []HostResult
	for _, play := range doc.Plays {
		for _, task := range play.Tasks {
			names := make([]string, 0, len(task.Hosts))
			for name := range task.Hosts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				hosts = append(hosts, hostResult(name, task.Hosts[name]))
			}
		}
	}
	return hosts, nil
}

func hostResult(name string, data map[string]any) HostResult {
	h := HostResult{Host: name, Status: StatusOK, Data: data}
	flag := func(k string) bool {
		b, _ := data[k].(bool)
		return b
	}
	switch {
	case flag("unreachable"):
		h.Status = StatusUnreachable
	case flag("failed"):
		h.Status = StatusFailed
	case flag("skipped"):
		h.Status = StatusSkipped
	case flag("changed"):
		h.Status = StatusChanged
	}
	if rc, ok := data["rc"].(float64); ok {
		h.RC = int(rc)
	}
	h.Msg = text(data["msg"])
	h.Stdout = text(data["stdout"])
	h.Stderr = text(data["stderr"])
	return h
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(string(data))
	}
}
