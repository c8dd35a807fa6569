package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

type flakyStep struct {
	id       provision.StepID
	failures int
	applied  int
}

func (s *flakyStep) ID() provision.StepID { return s.id }
func (s *flakyStep) Check(provision.RunContext) (provision.StepStatus, error) {
	return provision.StatusNeedsApply, nil
}
func (s *flakyStep) Plan(provision.RunContext) (provision.Diff, error) { return provision.Diff{}, nil }
func (s *flakyStep) Apply(provision.RunContext) error {
	s.applied++
	if s.applied <= s.failures {
		return errors.New("transient")
	}
	return nil
}
func (s *flakyStep) Verify(provision.RunContext) (bool, error) { return s.applied > s.failures, nil }
func (s *flakyStep) Explain() provision.Explanation            { return provision.Explanation{} }

func TestNewRunner_RetriesWithoutWaiting(t *testing.T) {
	t.Parallel()

	step := &flakyStep{id: provision.MustNewStepID("test:flaky"), failures: 2}
	res := NewRunner().Run(context.Background(), step)

	AssertOutcome(t, provision.OutcomeSucceeded, res)
	assert.Equal(t, 3, res.Attempts())
}

func TestNoSleep_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NoSleep(ctx, 0), context.Canceled)
	assert.NoError(t, NoSleep(context.Background(), 0))
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := WriteTempFile(t, dir, filepath.Join("etc", "debprep.env"), "A=1\n")

	require.Equal(t, filepath.Join(dir, "etc", "debprep.env"), path)
	AssertFileEquals(t, path, "A=1\n")
}
