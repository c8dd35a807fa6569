// Package ports defines interfaces for the host collaborators debprep drives.
package ports

import (
	"context"
)

// CommandResult represents the result of executing a command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// CommandRunner executes commands.
// A non-zero exit code is reported in the result, not as an error; the error
// is reserved for commands that could not be started at all.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}

// InputRunner executes commands that read from stdin.
// The input is never echoed or recorded, so it is safe for credentials.
type InputRunner interface {
	CommandRunner
	RunWithInput(ctx context.Context, input string, command string, args ...string) (CommandResult, error)
}
