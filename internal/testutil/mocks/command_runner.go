// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.InputRunner.
type CommandRunner struct {
	mu       sync.RWMutex
	results  map[string]ports.CommandResult
	sequence map[string][]ports.CommandResult
	errors   map[string]error
	calls    []ports.CommandCall
	inputs   map[string][]string
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results:  make(map[string]ports.CommandResult),
		sequence: make(map[string][]ports.CommandResult),
		errors:   make(map[string]error),
		calls:    make([]ports.CommandCall, 0),
		inputs:   make(map[string][]string),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddSequence registers results returned one per call, in order. Once the
// sequence is used up the last result repeats.
func (m *CommandRunner) AddSequence(command string, args []string, results ...ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence[buildKey(command, args)] = results
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// Run executes a mock command.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ports.CommandCall{Command: command, Args: args})
	return m.lookup(buildKey(command, args), command, args)
}

// RunWithInput executes a mock command and records its stdin.
func (m *CommandRunner) RunWithInput(_ context.Context, input string, command string, args ...string) (ports.CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := buildKey(command, args)
	m.calls = append(m.calls, ports.CommandCall{Command: command, Args: args})
	m.inputs[key] = append(m.inputs[key], input)
	return m.lookup(key, command, args)
}

func (m *CommandRunner) lookup(key, command string, args []string) (ports.CommandResult, error) {
	if err, ok := m.errors[key]; ok {
		return ports.CommandResult{}, err
	}

	if seq, ok := m.sequence[key]; ok && len(seq) > 0 {
		result := seq[0]
		if len(seq) > 1 {
			m.sequence[key] = seq[1:]
		}
		return result, nil
	}

	if result, ok := m.results[key]; ok {
		return result, nil
	}

	return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", command, args)
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how often command was invoked with args.
func (m *CommandRunner) CallCount(command string, args ...string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := buildKey(command, args)
	n := 0
	for _, c := range m.calls {
		if buildKey(c.Command, c.Args) == key {
			n++
		}
	}
	return n
}

// Inputs returns the stdin passed to command with args.
func (m *CommandRunner) Inputs(command string, args ...string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.inputs[buildKey(command, args)]...)
}

// Reset clears all registered results, errors, and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.sequence = make(map[string][]ports.CommandResult)
	m.errors = make(map[string]error)
	m.calls = make([]ports.CommandCall, 0)
	m.inputs = make(map[string][]string)
}

// buildKey creates a unique key for a command and its arguments.
func buildKey(command string, args []string) string {
	return command + ":" + strings.Join(args, ":")
}

// Ensure CommandRunner implements ports.InputRunner.
var _ ports.InputRunner = (*CommandRunner)(nil)
