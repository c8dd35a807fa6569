package provision

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BatchResult collects the results of a best-effort run over several steps.
type BatchResult struct {
	results  []StepResult
	duration time.Duration
}

// Results returns the step results in execution order.
func (b BatchResult) Results() []StepResult {
	return b.results
}

// Duration returns the wall-clock time of the whole batch.
func (b BatchResult) Duration() time.Duration {
	return b.duration
}

// Failed returns the results that did not end in the desired state.
func (b BatchResult) Failed() []StepResult {
	var failed []StepResult
	for _, r := range b.results {
		if !r.Success() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Success reports whether every step ended in the desired state.
func (b BatchResult) Success() bool {
	return len(b.Failed()) == 0
}

// Count returns how many results ended with outcome.
func (b BatchResult) Count(outcome Outcome) int {
	n := 0
	for _, r := range b.results {
		if r.Outcome() == outcome {
			n++
		}
	}
	return n
}

// Summary renders a one-line tally, e.g. "3 satisfied, 1 changed, 1 failed".
func (b BatchResult) Summary() string {
	parts := []string{
		fmt.Sprintf("%d satisfied", b.Count(OutcomeAlreadySatisfied)),
		fmt.Sprintf("%d changed", b.Count(OutcomeSucceeded)),
	}
	if n := b.Count(OutcomeFailedAfterRetries) + b.Count(OutcomeFatalError); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	return strings.Join(parts, ", ")
}

// RunAll runs steps in order. A failing step does not stop the batch; only
// cancellation of ctx does, and the remaining steps are then left unrun.
func (r *Runner) RunAll(ctx context.Context, steps []Step) BatchResult {
	start := time.Now()
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.Run(ctx, step))
	}
	return BatchResult{results: results, duration: time.Since(start)}
}
