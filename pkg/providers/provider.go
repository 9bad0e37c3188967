// Package providers defines the command execution seam shared by the
// ansible-doc schema provider and the ansible task runners.
package providers

import (
	"context"
	"time"
)

// CommandResult holds the output of a single command execution.
type CommandResult struct {
	Stdout   []byte        `json:"stdout"`
	Stderr   []byte        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// CommandExecutor abstracts process execution so callers can be tested
// without ansible installed.
// Implementations: RealExecutor, and the mocks in package tests.
type CommandExecutor interface {
	// Execute runs command with args. env entries (KEY=VALUE) are added to
	// the inherited process environment. A non-zero exit status is reported
	// in CommandResult.ExitCode, not as an error; an error means the command
	// could not be run at all.
	Execute(ctx context.Context, command string, args []string, env []string) (*CommandResult, error)
}
