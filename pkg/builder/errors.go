package builder

import (
	"errors"
	"fmt"
)

// Kind classifies a command failure. Every kind is recovered by the
// command loop; none ends the session.
type Kind int

const (
	// KindSchemaUnavailable: the module's schema could not be resolved.
	KindSchemaUnavailable Kind = iota + 1
	// KindInvalidCommand: the command word is not recognised.
	KindInvalidCommand
	// KindInvalidContext: the command is not allowed in the current state.
	KindInvalidContext
	// KindTaskExecution: the runner reported a failed task.
	KindTaskExecution
	// KindEmptyRequiredInput: a required answer was blank.
	KindEmptyRequiredInput
	// KindInvalidArgument: a command argument or file could not be used.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindSchemaUnavailable:
		return "schema unavailable"
	case KindInvalidCommand:
		return "invalid command"
	case KindInvalidContext:
		return "invalid context"
	case KindTaskExecution:
		return "task execution failed"
	case KindEmptyRequiredInput:
		return "empty required input"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CommandError is returned by Dispatch for a rejected or failed command.
type CommandError struct {
	Kind    Kind
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Kind, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func cmdErr(kind Kind, command string, format string, args ...any) *CommandError {
	return &CommandError{Kind: kind, Command: command, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of a *CommandError in err's chain, or 0.
func KindOf(err error) Kind {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
