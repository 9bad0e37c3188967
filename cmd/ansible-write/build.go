package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mahespth/ansible-write/pkg/builder"
	"github.com/mahespth/ansible-write/pkg/config"
	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
	"github.com/mahespth/ansible-write/pkg/providers"
	"github.com/mahespth/ansible-write/pkg/repl"
	"github.com/mahespth/ansible-write/pkg/runner"
	"github.com/mahespth/ansible-write/pkg/tui"
)

var flagPlain bool

var buildCmd = &cobra.Command{
	Use:   "build [playbook.yml]",
	Short: "Start an interactive session, optionally from an existing playbook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	doc, err := initialDocument(cfg, args)
	if err != nil {
		return err
	}
	executor := &providers.RealExecutor{Logger: logger}
	provider, err := newProvider(cfg, executor, logger)
	if err != nil {
		return err
	}
	r, err := newRunner(cfg, executor, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("session started", "version", version, "target", doc.TargetPattern(),
		"dry_run", cfg.DryRun, "plain", flagPlain)

	newBuilder := func(ui builder.UI) *builder.Builder {
		b := builder.New(ui, provider, r, logger)
		b.Load(doc)
		return b
	}

	if flagPlain {
		return runPlain(ctx, newBuilder)
	}
	return tui.Run(ctx, tui.Config{NewBuilder: newBuilder})
}

func runPlain(ctx context.Context, newBuilder func(builder.UI) *builder.Builder) error {
	console, err := repl.New()
	if err != nil {
		return err
	}
	defer console.Close()
	fmt.Println("ansible-write: type 'help' for commands, 'exit' to quit.")
	return newBuilder(console).Run(ctx)
}

// initialDocument builds the session document from the config, or loads
// the playbook named on the command line.
func initialDocument(cfg *config.Config, args []string) (*playbook.Document, error) {
	if len(args) == 1 {
		doc, errs, err := playbook.ValidateFile(args[0])
		if err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			printValidationErrors(errs)
			return nil, fmt.Errorf("%s: validation failed with %d error(s)", args[0], len(errs))
		}
		return doc, nil
	}

	doc := playbook.New()
	if cfg.Target != "" {
		if err := doc.SetTarget(cfg.Target); err != nil {
			return nil, err
		}
	}
	for k, v := range cfg.Environment {
		doc.SetEnv(k, v)
	}
	return doc, nil
}

// newProvider returns the static catalogue when one is configured, and
// otherwise a cached ansible-doc provider.
func newProvider(cfg *config.Config, executor providers.CommandExecutor, logger *slog.Logger) (modules.Provider, error) {
	if cfg.ModulesFile != "" {
		s, err := modules.LoadStaticFile(cfg.ModulesFile)
		if err != nil {
			return nil, err
		}
		logger.Info("module catalogue loaded", "path", cfg.ModulesFile, "modules", len(s.Modules()))
		return s, nil
	}
	return modules.NewCache(modules.NewAnsibleDoc(executor, cfg.AnsibleDocBinary, logger)), nil
}

func newRunner(cfg *config.Config, executor providers.CommandExecutor, logger *slog.Logger) (runner.Runner, error) {
	failWhen, err := runner.CompileFailWhen(cfg.FailWhen)
	if err != nil {
		return nil, err
	}
	adhoc, err := runner.NewAdhoc(executor, cfg.AnsibleBinary, cfg.Inventory, failWhen, logger)
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		return runner.NewDryRun(adhoc), nil
	}
	return adhoc, nil
}
