package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/app"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/testutil"
)

type stubStep struct {
	id       provision.StepID
	applyErr error
}

func (s *stubStep) ID() provision.StepID { return s.id }
func (s *stubStep) Check(provision.RunContext) (provision.StepStatus, error) {
	return provision.StatusNeedsApply, nil
}
func (s *stubStep) Plan(provision.RunContext) (provision.Diff, error) { return provision.Diff{}, nil }
func (s *stubStep) Apply(provision.RunContext) error                  { return s.applyErr }
func (s *stubStep) Verify(provision.RunContext) (bool, error)         { return s.applyErr == nil, nil }
func (s *stubStep) Explain() provision.Explanation                    { return provision.Explanation{} }

// fakeClient records what the commands asked for.
type fakeClient struct {
	registry     *provision.Registry
	root         bool
	pending      bool
	answer       bool
	bootstrapErr error
	failing      bool

	calls []string
}

func newFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	reg := provision.NewRegistry()
	require.NoError(t, reg.Register(provision.Group{
		ID:    "monitoring",
		Title: "monitoring agent",
		Steps: []provision.Step{&stubStep{id: provision.MustNewStepID("monitoring:agent")}},
	}))
	return &fakeClient{registry: reg, root: true, answer: true}
}

func (f *fakeClient) batch() provision.BatchResult {
	runner := testutil.NewRunner(provision.WithDefaultPolicy(provision.RetryPolicy{MaxAttempts: 1}))
	step := &stubStep{id: provision.MustNewStepID("monitoring:agent")}
	if f.failing {
		step.applyErr = errors.New("unit not found")
	}
	return runner.RunAll(context.Background(), []provision.Step{step})
}

func (f *fakeClient) Registry() *provision.Registry { return f.registry }
func (f *fakeClient) IsRoot() bool                  { return f.root }
func (f *fakeClient) NeedsBootstrap() bool          { return f.pending }

func (f *fakeClient) Confirm(_, _ string) (bool, error) {
	f.calls = append(f.calls, "confirm")
	return f.answer, nil
}

func (f *fakeClient) Bootstrap(context.Context) (provision.StepResult, error) {
	f.calls = append(f.calls, "bootstrap")
	return provision.StepResult{}, f.bootstrapErr
}

func (f *fakeClient) RunGroups(_ context.Context, ids ...string) (provision.BatchResult, error) {
	for _, id := range ids {
		f.calls = append(f.calls, "run:"+id)
	}
	return f.batch(), nil
}

func (f *fakeClient) InstallAll(context.Context) provision.BatchResult {
	f.calls = append(f.calls, "install-all")
	return f.batch()
}

func (f *fakeClient) PrintStatus(context.Context) []app.StepStatus {
	f.calls = append(f.calls, "status")
	return nil
}

func (f *fakeClient) ResetBootstrap() error {
	f.calls = append(f.calls, "reset")
	return nil
}

// useClient swaps newClient and the global flags for one test.
func useClient(t *testing.T, c client) {
	t.Helper()
	orig := newClient
	newClient = func(*cobra.Command) (client, error) { return c, nil }
	t.Cleanup(func() {
		newClient = orig
		cfgFile, envFile = "", ""
		verbose, jsonLogs, yesFlag = false, false, false
		resetForce, configInitForce = false, false
	})
}

// scriptMenu answers successive menus with the given keys.
func scriptMenu(t *testing.T, keys ...string) *int {
	t.Helper()
	shown := 0
	orig := runProgram
	runProgram = func(_ context.Context, m tea.Model) (tea.Model, error) {
		require.Less(t, shown, len(keys), "menu shown more often than scripted")
		k := keys[shown]
		shown++
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		return next, nil
	}
	t.Cleanup(func() { runProgram = orig })
	return &shown
}

func forceTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
