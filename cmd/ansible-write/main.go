package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mahespth/ansible-write/pkg/config"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := config.LoadDotEnv("."); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ansible-write [playbook.yml]",
	Short: "Interactive Ansible playbook builder",
	Long: "ansible-write builds a single-play Ansible playbook interactively. Each top-level task\n" +
		"is executed against the target as soon as it is accepted; blocks are collected and\n" +
		"written with the playbook.",
	Args:         cobra.MaximumNArgs(1),
	RunE:         runBuild,
	SilenceUsage: true,
}

// Flags shared by every subcommand. Each overrides the config file when set.
var (
	flagConfig      string
	flagTarget      string
	flagInventory   string
	flagModulesFile string
	flagFailWhen    string
	flagDryRun      bool
	flagLogFile     string
	flagLogLevel    string
	flagLogFormat   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default $XDG_CONFIG_HOME/ansible-write/config.yaml)")
	pf.StringVar(&flagTarget, "target", "", "initial host selector")
	pf.StringVarP(&flagInventory, "inventory", "i", "", "inventory passed to ansible")
	pf.StringVar(&flagModulesFile, "modules-file", "", "YAML module catalogue used instead of ansible-doc")
	pf.StringVar(&flagFailWhen, "fail-when", "", "expression classifying a host result as failed")
	pf.BoolVar(&flagDryRun, "dry-run", false, "show ansible commands instead of running them")
	pf.StringVar(&flagLogFile, "log-file", "", "write logs to this file")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format: text or json")

	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "use the line-mode interface instead of the full-screen one")
	buildCmd.Flags().BoolVar(&flagPlain, "plain", false, "use the line-mode interface instead of the full-screen one")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ansible-write %s (%s)\n", version, commit)
	},
}

// loadConfig merges the config file, environment and command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, required := flagConfig, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("target") {
		cfg.Target = flagTarget
	}
	if changed("inventory") {
		cfg.Inventory = flagInventory
	}
	if changed("modules-file") {
		cfg.ModulesFile = flagModulesFile
	}
	if changed("fail-when") {
		cfg.FailWhen = flagFailWhen
	}
	if changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
	if changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
}

// newLogger creates a slog logger writing to w in the given format.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openLogger opens cfg.LogFile for logging. Without a log file, logs are
// discarded; the terminal belongs to the interface.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, f)
	return logger, func() { f.Close() }, nil
}
