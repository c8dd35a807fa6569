package provision

import "time"

// Outcome is the terminal result of running a step.
type Outcome string

const (
	// OutcomeAlreadySatisfied means the precondition held and nothing was changed.
	OutcomeAlreadySatisfied Outcome = "already-satisfied"
	// OutcomeSucceeded means the mutation ran and the postcondition holds.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailedAfterRetries means every allowed attempt ran without convergence.
	OutcomeFailedAfterRetries Outcome = "failed-after-retries"
	// OutcomeFatalError means the step cannot run here and was not retried.
	OutcomeFatalError Outcome = "fatal-error"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// OK reports whether the host is in the desired state.
func (o Outcome) OK() bool {
	return o == OutcomeAlreadySatisfied || o == OutcomeSucceeded
}

// StepResult captures the outcome of running a single step.
type StepResult struct {
	stepID   StepID
	outcome  Outcome
	detail   string
	attempts int
	err      error
	duration time.Duration
	diff     Diff
	declined bool
}

// NewStepResult creates a new StepResult.
func NewStepResult(stepID StepID, outcome Outcome, detail string) StepResult {
	return StepResult{
		stepID:  stepID,
		outcome: outcome,
		detail:  detail,
	}
}

// StepID returns the ID of the step that was run.
func (r StepResult) StepID() StepID {
	return r.stepID
}

// Outcome returns the terminal outcome.
func (r StepResult) Outcome() Outcome {
	return r.outcome
}

// Detail returns a human-readable description of the outcome.
func (r StepResult) Detail() string {
	return r.detail
}

// Attempts returns how many mutation attempts were made.
func (r StepResult) Attempts() int {
	return r.attempts
}

// Error returns the last error observed, if any.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the step took.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Diff returns the planned change (empty when nothing was planned).
func (r StepResult) Diff() Diff {
	return r.diff
}

// Declined reports whether the operator declined a confirmation.
func (r StepResult) Declined() bool {
	return r.declined
}

// Success returns true if the host is in the desired state.
func (r StepResult) Success() bool {
	return r.outcome.OK()
}

// WithAttempts returns a new StepResult with the attempt count set.
func (r StepResult) WithAttempts(n int) StepResult {
	r.attempts = n
	return r
}

// WithError returns a new StepResult with the error set.
func (r StepResult) WithError(err error) StepResult {
	r.err = err
	return r
}

// WithDuration returns a new StepResult with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// WithDiff returns a new StepResult with diff set.
func (r StepResult) WithDiff(d Diff) StepResult {
	r.diff = d
	return r
}

// WithDeclined returns a new StepResult marked as declined by the operator.
func (r StepResult) WithDeclined(declined bool) StepResult {
	r.declined = declined
	return r
}
