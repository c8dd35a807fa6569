package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

// AssertOutcome asserts the outcome of res and shows its detail and error otherwise.
func AssertOutcome(t testing.TB, want provision.Outcome, res provision.StepResult) bool {
	t.Helper()

	if res.Outcome() == want {
		return true
	}
	msg := res.Detail()
	if res.Error() != nil {
		msg += ": " + res.Error().Error()
	}
	return assert.Fail(t, "unexpected outcome",
		"step %s: want %s, got %s (%s)", res.StepID(), want, res.Outcome(), msg)
}

// AssertFileEquals asserts that a file on disk has exactly the expected content.
func AssertFileEquals(t testing.TB, path, expected string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read %s", path)
	assert.Equal(t, expected, string(data), "content of %s", path)
}
