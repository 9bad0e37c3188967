package modules

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mahespth/ansible-write/pkg/providers"
	"gopkg.in/yaml.v3"
)

// AnsibleDoc resolves module schemas with `ansible-doc -j <module>`.
type AnsibleDoc struct {
	Executor providers.CommandExecutor
	// Binary defaults to "ansible-doc".
	Binary string
	Logger *slog.Logger
}

// NewAnsibleDoc creates an ansible-doc provider using executor.
func NewAnsibleDoc(executor providers.CommandExecutor, binary string, logger *slog.Logger) *AnsibleDoc {
	if binary == "" {
		binary = "ansible-doc"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AnsibleDoc{Executor: executor, Binary: binary, Logger: logger}
}

// Options implements Provider.
func (p *AnsibleDoc) Options(ctx context.Context, module string) (*Schema, error) {
	module = strings.TrimSpace(module)
	if module == "" {
		return nil, fmt.Errorf("empty module name: %w", ErrModuleNotFound)
	}

	res, err := p.Executor.Execute(ctx, p.Binary, []string{"-j", module}, nil)
	if err != nil {
		if providers.IsExecNotFound(err) {
			return nil, fmt.Errorf("%s is not installed or not on PATH: %w", p.Binary, ErrProviderUnavailable)
		}
		return nil, fmt.Errorf("run %s: %v: %w", p.Binary, err, ErrProviderUnavailable)
	}
	if res.ExitCode != 0 {
		p.Logger.Info("ansible-doc failed", "module", module, "exit_code", res.ExitCode,
			"stderr", strings.TrimSpace(string(res.Stderr)))
		return nil, fmt.Errorf("module %q: %w", module, ErrModuleNotFound)
	}

	opts, err := parseAnsibleDoc(res.Stdout, module)
	if err != nil {
		return nil, err
	}
	p.Logger.Debug("module schema loaded", "module", module, "options", len(opts), "duration", res.Duration)
	return &Schema{Module: module, Options: opts}, nil
}

// parseAnsibleDoc extracts the option mapping from ansible-doc JSON output.
// The JSON is decoded as YAML so option order is preserved.
func parseAnsibleDoc(out []byte, module string) ([]Option, error) {
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("module %q: empty ansible-doc output: %w", module, ErrModuleNotFound)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(out, &root); err != nil {
		return nil, fmt.Errorf("decode ansible-doc output: %v: %w", err, ErrProviderUnavailable)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("module %q: %w", module, ErrModuleNotFound)
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode || len(top.Content) == 0 {
		return nil, fmt.Errorf("module %q: %w", module, ErrModuleNotFound)
	}

	entry := lookup(top, module)
	if entry == nil && len(top.Content) == 2 {
		// ansible-doc keys the result by the resolved FQCN, e.g. "ping" → "ansible.builtin.ping".
		entry = top.Content[1]
	}
	if isNull(entry) {
		return nil, fmt.Errorf("module %q: %w", module, ErrModuleNotFound)
	}

	options := lookup(lookup(entry, "doc"), "options")
	if options == nil {
		options = lookup(entry, "options")
	}
	opts, err := parseOptions(options, true)
	if err != nil {
		return nil, fmt.Errorf("module %q: %v: %w", module, err, ErrProviderUnavailable)
	}
	return opts, nil
}
