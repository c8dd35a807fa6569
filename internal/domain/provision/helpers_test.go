package provision

import (
	"context"
	"sync"
	"time"
)

// fakeStep is a Step whose behaviour is set through function fields.
type fakeStep struct {
	id       StepID
	checkFn  func(RunContext) (StepStatus, error)
	applyFn  func(RunContext) error
	verifyFn func(RunContext) (bool, error)
	guardFn  func(RunContext) error
	root     bool
	policy   *RetryPolicy

	mu      sync.Mutex
	applies int
	checks  int
}

func newFakeStep(id string) *fakeStep {
	return &fakeStep{id: MustNewStepID(id)}
}

func (s *fakeStep) ID() StepID { return s.id }

func (s *fakeStep) Check(ctx RunContext) (StepStatus, error) {
	s.mu.Lock()
	s.checks++
	s.mu.Unlock()
	if s.checkFn != nil {
		return s.checkFn(ctx)
	}
	return StatusNeedsApply, nil
}

func (s *fakeStep) Plan(_ RunContext) (Diff, error) {
	return NewDiff(DiffTypeAdd, "fake", s.id.String(), "", "present"), nil
}

func (s *fakeStep) Apply(ctx RunContext) error {
	s.mu.Lock()
	s.applies++
	s.mu.Unlock()
	if s.applyFn != nil {
		return s.applyFn(ctx)
	}
	return nil
}

func (s *fakeStep) Verify(ctx RunContext) (bool, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx)
	}
	return true, nil
}

func (s *fakeStep) Explain() Explanation {
	return NewExplanation("fake step", "used in tests", nil)
}

func (s *fakeStep) Applies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applies
}

// guardedFake adds a Guard to fakeStep.
type guardedFake struct{ *fakeStep }

func (g guardedFake) Guard(ctx RunContext) error { return g.guardFn(ctx) }

// privilegedFake adds RequiresRoot to fakeStep.
type privilegedFake struct{ *fakeStep }

func (p privilegedFake) RequiresRoot() bool { return p.root }

// policyFake adds a step-level RetryPolicy to fakeStep.
type policyFake struct{ *fakeStep }

func (p policyFake) RetryPolicy() RetryPolicy { return *p.policy }

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return r.err
}

func (r *recordingSleeper) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second, MaxBackoff: 10 * time.Second, Multiplier: 2}
}

func newTestRunner(sleeper *recordingSleeper, opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithDefaultPolicy(testPolicy()),
		WithSleeper(sleeper.Sleep),
		WithPrivilegeCheck(func() bool { return true }),
	}
	return NewRunner(append(base, opts...)...)
}
