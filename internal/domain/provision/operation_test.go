package provision

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

func TestSequence_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	var ran []string
	record := func(name string, err error) Operation {
		return Op(name, func(RunContext) error {
			ran = append(ran, name)
			return err
		})
	}
	cause := errors.New("404")

	err := Sequence(NewRunContext(context.Background()),
		record("fetch key", nil),
		record("verify key", cause),
		record("write keyring", nil),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "verify key: 404", err.Error())
	assert.Equal(t, []string{"fetch key", "verify key"}, ran)
}

func TestSequence_AllSucceed(t *testing.T) {
	t.Parallel()

	count := 0
	op := Op("noop", func(RunContext) error { count++; return nil })

	require.NoError(t, Sequence(NewRunContext(context.Background()), op, op, op))
	assert.Equal(t, 3, count)
}

func TestSequence_HonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	err := Sequence(NewRunContext(ctx), Op("noop", func(RunContext) error { called = true; return nil }))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSequence_LogsThroughContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithOutput(&buf), logging.WithLevel(ports.LevelDebug))
	ctx := NewRunContext(ports.ContextWithLogger(context.Background(), logger)).WithAttempt(2)

	require.NoError(t, Sequence(ctx, Op("write keyring", func(RunContext) error { return nil })))

	assert.Contains(t, buf.String(), "running sub-operation")
	assert.Contains(t, buf.String(), "write keyring")
}
