package provision

import (
	"fmt"

	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Operation is one ordered sub-operation of a mutation.
type Operation struct {
	Name string
	Do   func(ctx RunContext) error
}

// Op creates an Operation.
func Op(name string, do func(ctx RunContext) error) Operation {
	return Operation{Name: name, Do: do}
}

// Sequence runs ops in order and stops at the first failure.
// The returned error names the failing sub-operation and keeps the original
// error in its chain so the runner can still classify it.
func Sequence(ctx RunContext, ops ...Operation) error {
	log := logging.FromContext(ctx.Context())
	for _, op := range ops {
		if err := ctx.Context().Err(); err != nil {
			return err
		}
		log.Debug(ctx.Context(), "running sub-operation", ports.F("op", op.Name), ports.F("attempt", ctx.Attempt()))
		if err := op.Do(ctx); err != nil {
			return fmt.Errorf("%s: %w", op.Name, err)
		}
	}
	return nil
}
