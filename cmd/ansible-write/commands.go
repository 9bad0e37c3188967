package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mahespth/ansible-write/pkg/playbook"
	"github.com/mahespth/ansible-write/pkg/providers"
)

// --- options ---

var optionsCmd = &cobra.Command{
	Use:   "options <module>",
	Short: "List a module's options in the order the form asks for them",
	Args:  cobra.ExactArgs(1),
	RunE:  runOptions,
}

func runOptions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	provider, err := newProvider(cfg, &providers.RealExecutor{Logger: logger}, logger)
	if err != nil {
		return err
	}
	schema, err := provider.Options(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d options)\n", schema.Module, len(schema.Options))
	for _, o := range schema.Options {
		marker := " "
		if o.Required {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-24s %s\n", marker, o.Name, o.Prompt())
	}
	return nil
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate <playbook.yml>",
	Short: "Validate a playbook against the importable playbook schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, errs, err := playbook.ValidateFile(args[0])
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		printValidationErrors(errs)
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}
	tasks, blocks := doc.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (hosts %s, %d task(s), %d block(s))\n",
		args[0], doc.TargetPattern(), tasks, blocks)
	return nil
}

func printValidationErrors(errs []*playbook.ValidationError) {
	fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
		}
	}
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of importable playbooks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := playbook.GenerateJSONSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
