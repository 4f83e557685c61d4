package cli

import "fmt"

// Exit codes returned by the check command.
const (
	ExitMalformedRows        = 1
	ExitRejectedTransactions = 2
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after printing their diagnostics to stderr, so main
// exits with the code without printing anything else.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.exitCode)
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}
