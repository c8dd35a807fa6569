package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/testutil/mocks"
)

type stubRunner struct {
	outcome  provision.Outcome
	declined bool
	calls    int
}

func (r *stubRunner) Run(_ context.Context, step provision.Step) provision.StepResult {
	r.calls++
	return provision.NewStepResult(step.ID(), r.outcome, "stub").WithDeclined(r.declined)
}

type noopStep struct{}

func (noopStep) ID() provision.StepID { return provision.MustNewStepID("apt:baseline") }
func (noopStep) Check(provision.RunContext) (provision.StepStatus, error) {
	return provision.StatusNeedsApply, nil
}
func (noopStep) Plan(provision.RunContext) (provision.Diff, error) { return provision.Diff{}, nil }
func (noopStep) Apply(provision.RunContext) error                  { return nil }
func (noopStep) Verify(provision.RunContext) (bool, error)         { return true, nil }
func (noopStep) Explain() provision.Explanation                    { return provision.Explanation{} }

func TestGate_Lifecycle(t *testing.T) {
	t.Parallel()

	store := mocks.NewFlagStore()
	g := New(store)

	assert.True(t, g.ShouldBootstrap())
	assert.True(t, g.ShouldBootstrap(), "reading the gate must not close it")

	require.NoError(t, g.MarkBootstrapped())
	assert.False(t, g.ShouldBootstrap())
	assert.False(t, g.ShouldBootstrap())

	require.NoError(t, g.ResetBootstrap())
	assert.True(t, g.ShouldBootstrap())
}

func TestGate_UnreadableMarkerOpensGate(t *testing.T) {
	t.Parallel()

	store := mocks.NewFlagStore()
	store.GetErr = errors.New("permission denied")

	assert.True(t, New(store).ShouldBootstrap())
}

func TestGate_BootstrapMarksOnlyAfterSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		outcome    provision.Outcome
		declined   bool
		wantMarked bool
	}{
		{name: "succeeded", outcome: provision.OutcomeSucceeded, wantMarked: true},
		{name: "already satisfied", outcome: provision.OutcomeAlreadySatisfied, wantMarked: true},
		{name: "failed after retries", outcome: provision.OutcomeFailedAfterRetries},
		{name: "fatal", outcome: provision.OutcomeFatalError},
		{name: "declined", outcome: provision.OutcomeAlreadySatisfied, declined: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := mocks.NewFlagStore()
			g := New(store)
			runner := &stubRunner{outcome: tt.outcome, declined: tt.declined}

			result, err := g.Bootstrap(context.Background(), runner, noopStep{})

			require.NoError(t, err)
			assert.Equal(t, tt.outcome, result.Outcome())
			assert.Equal(t, 1, runner.calls)
			assert.Equal(t, !tt.wantMarked, g.ShouldBootstrap())
		})
	}
}

func TestGate_BootstrapSkipsWhenClosed(t *testing.T) {
	t.Parallel()

	store := mocks.NewFlagStore()
	g := New(store)
	require.NoError(t, g.MarkBootstrapped())
	runner := &stubRunner{outcome: provision.OutcomeSucceeded}

	result, err := g.Bootstrap(context.Background(), runner, noopStep{})

	require.NoError(t, err)
	assert.Equal(t, provision.OutcomeAlreadySatisfied, result.Outcome())
	assert.Equal(t, 0, runner.calls)
}

func TestGate_BootstrapReportsMarkerWriteFailure(t *testing.T) {
	t.Parallel()

	store := mocks.NewFlagStore()
	store.SetErr = errors.New("read-only file system")
	runner := &stubRunner{outcome: provision.OutcomeSucceeded}

	result, err := New(store).Bootstrap(context.Background(), runner, noopStep{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.True(t, result.Success())
}
