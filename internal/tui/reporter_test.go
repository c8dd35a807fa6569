package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/tui/ui"
)

func TestLevelFor(t *testing.T) {
	t.Parallel()

	id := provision.MustNewStepID("apt:baseline")

	tests := []struct {
		name string
		res  provision.StepResult
		want Level
	}{
		{"satisfied", provision.NewStepResult(id, provision.OutcomeAlreadySatisfied, ""), LevelInfo},
		{"declined", provision.NewStepResult(id, provision.OutcomeAlreadySatisfied, "").WithDeclined(true), LevelWarning},
		{"succeeded", provision.NewStepResult(id, provision.OutcomeSucceeded, ""), LevelSuccess},
		{"retries", provision.NewStepResult(id, provision.OutcomeFailedAfterRetries, ""), LevelError},
		{"fatal", provision.NewStepResult(id, provision.OutcomeFatalError, ""), LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LevelFor(tt.res))
		})
	}
}

func TestReporter_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewReporter(&buf, ui.Plain())

	r.Info("checking %d groups", 3)
	r.Success("done")
	r.Warning("skipped")
	r.Error("broken")

	assert.Equal(t, "• checking 3 groups\n✓ done\n! skipped\n✗ broken\n", buf.String())
}

func TestReporter_Result(t *testing.T) {
	t.Parallel()

	id := provision.MustNewStepID("docker:engine")
	var buf bytes.Buffer
	r := NewReporter(&buf, ui.Plain())

	r.Result(provision.NewStepResult(id, provision.OutcomeSucceeded, "converged").
		WithDiff(provision.NewDiff(provision.DiffTypeAdd, "docker", "docker", "", "docker-ce")))
	r.Result(provision.NewStepResult(id, provision.OutcomeFatalError, "refusing key").
		WithError(provision.Unsupported("refusing key").WithSuggestion("check docker.key_fingerprint")))

	assert.Equal(t,
		"✓ docker:engine: converged + docker docker (docker-ce)\n"+
			"✗ docker:engine: refusing key\n"+
			"    hint: check docker.key_fingerprint\n",
		buf.String())
}

type fakeStep struct {
	id        provision.StepID
	satisfied bool
	applyErr  error
}

func (s *fakeStep) ID() provision.StepID { return s.id }
func (s *fakeStep) Check(provision.RunContext) (provision.StepStatus, error) {
	if s.satisfied {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}
func (s *fakeStep) Plan(provision.RunContext) (provision.Diff, error) { return provision.Diff{}, nil }
func (s *fakeStep) Apply(provision.RunContext) error                  { return s.applyErr }
func (s *fakeStep) Verify(provision.RunContext) (bool, error)         { return s.applyErr == nil, nil }
func (s *fakeStep) Explain() provision.Explanation                    { return provision.Explanation{} }

func TestReporter_Batch(t *testing.T) {
	t.Parallel()

	runner := provision.NewRunner(
		provision.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		provision.WithDefaultPolicy(provision.RetryPolicy{MaxAttempts: 1}),
	)
	batch := runner.RunAll(context.Background(), []provision.Step{
		&fakeStep{id: provision.MustNewStepID("apt:sources"), satisfied: true},
		&fakeStep{id: provision.MustNewStepID("apt:baseline")},
		&fakeStep{id: provision.MustNewStepID("docker:engine"), applyErr: errors.New("apt-get exited 100")},
	})

	var buf bytes.Buffer
	NewReporter(&buf, ui.Plain()).Batch(batch)

	out := buf.String()
	assert.Contains(t, out, "• apt:sources: already in desired state")
	assert.Contains(t, out, "✓ apt:baseline: converged")
	assert.Contains(t, out, "✗ docker:engine: gave up after 1 attempt(s)")
	assert.Contains(t, out, "✗ 1 satisfied, 1 changed, 1 failed; failed: docker:engine")
}

func TestReporter_PhaseChanged(t *testing.T) {
	t.Parallel()

	id := provision.MustNewStepID("apt:baseline")
	var buf bytes.Buffer
	r := NewReporter(&buf, ui.Plain())

	r.PhaseChanged(id, provision.PhaseApplying, 1)
	r.PhaseChanged(id, provision.PhaseBackoff, 1)
	assert.Equal(t, "! apt:baseline: attempt 1 failed, retrying\n", buf.String())

	buf.Reset()
	r.SetVerbose(true)
	r.PhaseChanged(id, provision.PhaseApplying, 2)
	assert.Equal(t, "  apt:baseline applying (attempt 2)\n", buf.String())
}
