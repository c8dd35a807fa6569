package provision

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Runner executes steps one at a time until they converge or give up.
type Runner struct {
	logger   ports.Logger
	policy   RetryPolicy
	sleep    Sleeper
	isRoot   func() bool
	observer Observer
	lookup   func(StepID) RetryPolicy
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger (default: no-op).
func WithLogger(logger ports.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithDefaultPolicy sets the retry policy for steps that do not carry their own.
func WithDefaultPolicy(policy RetryPolicy) RunnerOption {
	return func(r *Runner) {
		r.policy = policy.Normalize()
	}
}

// WithPolicyLookup supplies per-step policies, for example from configuration.
// A step's own RetryPolicy still wins.
func WithPolicyLookup(lookup func(StepID) RetryPolicy) RunnerOption {
	return func(r *Runner) {
		r.lookup = lookup
	}
}

// WithSleeper replaces the backoff wait, mainly for tests.
func WithSleeper(sleep Sleeper) RunnerOption {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// WithPrivilegeCheck replaces the root check (default: effective UID 0).
func WithPrivilegeCheck(isRoot func() bool) RunnerOption {
	return func(r *Runner) {
		r.isRoot = isRoot
	}
}

// WithObserver registers an observer for phase changes.
func WithObserver(observer Observer) RunnerOption {
	return func(r *Runner) {
		r.observer = observer
	}
}

// NewRunner creates a new Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: logging.NewNopLogger(),
		policy: DefaultRetryPolicy(),
		sleep:  contextSleep,
		isRoot: func() bool { return os.Geteuid() == 0 },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives step to convergence and always returns a result; it never panics
// or returns an error past its StepResult. A panicking step is a FatalError.
func (r *Runner) Run(ctx context.Context, step Step) (result StepResult) {
	start := time.Now()
	id := step.ID()
	log := r.logger.With(ports.F("step", id.String()))
	tracker := newPhaseTracker(id, r.observer)
	defer tracker.stop()

	finish := func(res StepResult) StepResult {
		res = res.WithDuration(time.Since(start))
		r.logResult(ctx, log, res)
		return res
	}

	current := 0
	defer func() {
		if p := recover(); p != nil {
			perr := NewPanicError(id.String(), p)
			tracker.fire(eventFatal, PhaseFatal, current)
			result = finish(NewStepResult(id, OutcomeFatalError, perr.Error()).
				WithAttempts(current).WithError(perr))
		}
	}()

	rc := NewRunContext(ports.ContextWithLogger(ctx, log))

	// The precondition wins over the guard: a host already in the desired
	// state is reported as such even where the step could not change it.
	tracker.fire(eventCheck, PhaseChecking, 0)
	status, checkErr := step.Check(rc)
	if checkErr == nil && status == StatusSatisfied {
		tracker.fire(eventSatisfied, PhaseSatisfied, 0)
		return finish(NewStepResult(id, OutcomeAlreadySatisfied, "already in desired state"))
	}

	if guarded, ok := step.(GuardedStep); ok {
		if err := guarded.Guard(rc); err != nil {
			tracker.fire(eventFatal, PhaseFatal, 0)
			return finish(NewStepResult(id, OutcomeFatalError, err.Error()).WithError(err))
		}
	}

	if checkErr != nil {
		log.Warn(ctx, "precondition unknown, treating as unsatisfied", ports.F("error", checkErr.Error()))
	}

	if privileged, ok := step.(PrivilegedStep); ok && privileged.RequiresRoot() && !r.isRoot() {
		perr := NewNotPrivilegedError(id.String())
		tracker.fire(eventFatal, PhaseFatal, 0)
		return finish(NewStepResult(id, OutcomeFatalError, perr.Message).WithError(perr))
	}

	diff, err := step.Plan(rc)
	if err != nil {
		log.Debug(ctx, "plan unavailable", ports.F("error", err.Error()))
	}

	policy := r.policy
	if r.lookup != nil {
		policy = r.lookup(id).Normalize()
	}
	if withPolicy, ok := step.(PolicyStep); ok {
		policy = withPolicy.RetryPolicy().Normalize()
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			ierr := NewInterruptedError(id.String(), cerr)
			tracker.fire(eventFailed, PhaseFailed, attempt-1)
			return finish(NewStepResult(id, OutcomeFailedAfterRetries, ierr.Message).
				WithAttempts(attempt - 1).WithError(ierr).WithDiff(diff))
		}

		current = attempt
		arc := rc.WithAttempt(attempt)
		tracker.fire(eventApply, PhaseApplying, attempt)
		log.Debug(ctx, "applying", ports.F("attempt", attempt))

		applyErr := step.Apply(arc)
		switch KindOf(applyErr) {
		case KindUnsupported:
			tracker.fire(eventFatal, PhaseFatal, attempt)
			return finish(NewStepResult(id, OutcomeFatalError, applyErr.Error()).
				WithAttempts(attempt).WithError(applyErr).WithDiff(diff))
		case KindUserAborted:
			tracker.fire(eventSatisfied, PhaseSatisfied, attempt)
			return finish(NewStepResult(id, OutcomeAlreadySatisfied, "declined by operator").
				WithAttempts(attempt).WithDeclined(true))
		}

		if applyErr != nil {
			lastErr = NewApplyFailedError(id.String(), applyErr)
		} else {
			tracker.fire(eventVerify, PhaseVerifying, attempt)
			ok, verr := step.Verify(arc)
			if verr == nil && ok {
				tracker.fire(eventSucceeded, PhaseSucceeded, attempt)
				return finish(NewStepResult(id, OutcomeSucceeded, "converged").
					WithAttempts(attempt).WithDiff(diff))
			}
			lastErr = NewVerifyFailedError(id.String(), verr)
		}

		log.Warn(ctx, "attempt did not converge",
			ports.F("attempt", attempt),
			ports.F("max_attempts", policy.MaxAttempts),
			ports.F("error", lastErr.Error()))

		if attempt == policy.MaxAttempts {
			break
		}

		tracker.fire(eventBackoff, PhaseBackoff, attempt)
		if serr := r.sleep(ctx, policy.Delay(attempt)); serr != nil {
			ierr := NewInterruptedError(id.String(), serr)
			tracker.fire(eventFailed, PhaseFailed, attempt)
			return finish(NewStepResult(id, OutcomeFailedAfterRetries, ierr.Message).
				WithAttempts(attempt).WithError(ierr).WithDiff(diff))
		}
	}

	tracker.fire(eventFailed, PhaseFailed, policy.MaxAttempts)
	detail := fmt.Sprintf("gave up after %d attempt(s)", policy.MaxAttempts)
	return finish(NewStepResult(id, OutcomeFailedAfterRetries, detail).
		WithAttempts(policy.MaxAttempts).WithError(lastErr).WithDiff(diff))
}

func (r *Runner) logResult(ctx context.Context, log ports.Logger, res StepResult) {
	fields := []ports.Field{
		ports.F("outcome", res.Outcome().String()),
		ports.F("attempts", res.Attempts()),
		ports.F("duration", res.Duration().Round(time.Millisecond).String()),
	}
	switch res.Outcome() {
	case OutcomeAlreadySatisfied, OutcomeSucceeded:
		log.Info(ctx, res.Detail(), fields...)
	case OutcomeFailedAfterRetries, OutcomeFatalError:
		if res.Error() != nil {
			fields = append(fields, ports.F("error", res.Error().Error()))
		}
		log.Error(ctx, res.Detail(), fields...)
	}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
