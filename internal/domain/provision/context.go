package provision

import "context"

// RunContext is handed to every Check, Plan, Apply and Verify call.
type RunContext struct {
	ctx     context.Context
	attempt int
}

// NewRunContext creates a new RunContext with the given context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{ctx: ctx}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// Attempt returns the 1-based mutation attempt, or 0 outside of Apply and Verify.
func (r RunContext) Attempt() int {
	return r.attempt
}

// WithAttempt returns a copy of the RunContext for the given attempt.
func (r RunContext) WithAttempt(attempt int) RunContext {
	r.attempt = attempt
	return r
}
