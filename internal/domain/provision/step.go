// Package provision runs idempotent provisioning steps to convergence.
//
// A Step bundles a precondition (Check), a mutation (Apply), a postcondition
// (Verify) and, optionally, its own retry policy. The Runner never mutates a
// host whose precondition already holds and only reports success when the
// live postcondition holds.
package provision

// Step is an idempotent unit of host configuration.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Check evaluates the precondition. StatusSatisfied means no mutation is needed.
	Check(ctx RunContext) (StepStatus, error)

	// Plan describes the change Apply would make.
	Plan(ctx RunContext) (Diff, error)

	// Apply runs the mutation. It is usually a Sequence of sub-operations.
	Apply(ctx RunContext) error

	// Verify evaluates the postcondition against live state, independent of
	// whether Apply reported success.
	Verify(ctx RunContext) (bool, error)

	// Explain returns human-readable context for this step.
	Explain() Explanation
}

// GuardedStep rejects environments it can never succeed on.
// Guard runs before the precondition; an error short-circuits to FatalError.
type GuardedStep interface {
	Step
	Guard(ctx RunContext) error
}

// PrivilegedStep declares that its mutation needs root.
type PrivilegedStep interface {
	Step
	RequiresRoot() bool
}

// PolicyStep overrides the runner's default retry policy.
type PolicyStep interface {
	Step
	RetryPolicy() RetryPolicy
}
