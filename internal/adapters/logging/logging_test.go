package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NewNopLogger()
	ctx := context.Background()
	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	assert.Same(t, logger, logger.With(ports.F("key", "value")))
	assert.Equal(t, ports.LevelInfo, logger.Level())
	logger.SetLevel(ports.LevelDebug)
	assert.Equal(t, ports.LevelDebug, logger.Level())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.IsType(t, &NopLogger{}, FromContext(context.Background()))

	console := NewConsoleLogger()
	ctx := ports.ContextWithLogger(context.Background(), console)
	assert.Same(t, console, FromContext(ctx))
}

func TestConsoleLogger_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(
		WithOutput(&buf),
		WithClockForTest(),
		WithRunID("run-1"),
	)

	logger.Info(context.Background(), "step finished",
		ports.F("step", "apt:baseline"),
		ports.F("detail", "installed 2 packages"),
		ports.F("elapsed", 1500*time.Millisecond),
	)

	assert.Equal(t,
		`10:20:30 [INFO] step finished run_id=run-1 step=apt:baseline detail="installed 2 packages" elapsed=1.5s`+"\n",
		buf.String())
}

func TestConsoleLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelWarn), WithTimestamp(false))
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown warn")
	logger.Error(ctx, "shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown warn")
	assert.Contains(t, out, "[ERROR] shown error")

	logger.SetLevel(ports.LevelDebug)
	logger.Debug(ctx, "now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestConsoleLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(
		WithOutput(&buf),
		WithJSONFormat(true),
		WithClockForTest(),
		WithRunID("run-2"),
	)

	logger.Error(context.Background(), "mutation failed",
		ports.F("attempt", 2),
		ports.F("error", errors.New("apt-get exited 100")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "mutation failed", entry["msg"])
	assert.Equal(t, "2024-03-01T10:20:30Z", entry["time"])
	assert.Equal(t, "run-2", entry["run_id"])
	assert.EqualValues(t, 2, entry["attempt"])
	assert.Equal(t, "apt-get exited 100", entry["error"])
}

func TestConsoleLogger_RedactsSensitiveFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithSensitiveKeys("API_KEY"))

	logger.Info(context.Background(), "account ready",
		ports.F("user", "telemetry"),
		ports.F("password", "hunter2"),
		ports.F("Secret", "s3cr3t"),
		ports.F("api_key", "abc"),
	)

	out := buf.String()
	assert.Contains(t, out, "user=telemetry")
	for _, leaked := range []string{"hunter2", "s3cr3t", "abc"} {
		assert.NotContains(t, out, leaked)
	}
	assert.Equal(t, 3, strings.Count(out, Redacted))
}

func TestConsoleLogger_WithSharesOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	parent := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithLevelLabel(false))
	child := parent.With(ports.F("step", "docker:engine"))

	child.Info(context.Background(), "child")
	parent.Info(context.Background(), "parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "child step=docker:engine", lines[0])
	assert.Equal(t, "parent", lines[1])
}

func TestTextValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   interface{}
		want string
	}{
		{"plain", "plain"},
		{"", `""`},
		{"two words", `"two words"`},
		{"k=v", `"k=v"`},
		{42, "42"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, textValue(tt.in))
	}
}

// WithClockForTest pins timestamps for golden output.
func WithClockForTest() ConsoleLoggerOption {
	return withClock(fixedClock)
}
