package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
)

// usageError is a bad invocation: wrong args, bad flag, bad index.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return usageError{msg: fmt.Sprintf(format, a...)}
}

// noArgs rejects positional args. On the root this is what reports an
// unknown subcommand.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{msg: usage}
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{msg: usage}
		}
		return nil
	}
}

// ExitCode maps a command error to the process exit code:
// 0 ok, 2 usage or rejected input, 1 anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) || errors.Is(err, model.ErrValidation) {
		return 2
	}
	return 1
}
