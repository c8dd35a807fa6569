// Package gate decides whether first-run setup still has to happen on this host.
package gate

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Gate wraps the persisted initialization marker.
type Gate struct {
	store ports.FlagStore
}

// New creates a Gate over store.
func New(store ports.FlagStore) *Gate {
	return &Gate{store: store}
}

// ShouldBootstrap reports whether first-run setup has not completed yet.
// An unreadable marker counts as absent so that setup runs again.
func (g *Gate) ShouldBootstrap() bool {
	done, err := g.store.Get()
	if err != nil {
		return true
	}
	return !done
}

// MarkBootstrapped records that first-run setup completed.
func (g *Gate) MarkBootstrapped() error {
	if err := g.store.Set(); err != nil {
		return fmt.Errorf("failed to write initialization marker: %w", err)
	}
	return nil
}

// ResetBootstrap removes the marker so the next invocation runs setup again.
func (g *Gate) ResetBootstrap() error {
	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("failed to remove initialization marker: %w", err)
	}
	return nil
}

// StepRunner runs a single step to convergence.
type StepRunner interface {
	Run(ctx context.Context, step provision.Step) provision.StepResult
}

// Bootstrap runs step when the gate is open and marks the host only when the
// step ended in the desired state. When the gate is closed it returns a
// synthetic AlreadySatisfied result without touching the step.
func (g *Gate) Bootstrap(ctx context.Context, runner StepRunner, step provision.Step) (provision.StepResult, error) {
	if !g.ShouldBootstrap() {
		return provision.NewStepResult(step.ID(), provision.OutcomeAlreadySatisfied, "first-run setup already completed"), nil
	}

	result := runner.Run(ctx, step)
	if !result.Success() || result.Declined() {
		return result, nil
	}
	if err := g.MarkBootstrapped(); err != nil {
		return result, err
	}
	return result, nil
}
