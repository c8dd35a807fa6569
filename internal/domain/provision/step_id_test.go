package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStepID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "area and name", input: "apt:baseline"},
		{name: "hyphenated", input: "docker:engine-repo"},
		{name: "trimmed", input: "  telemetry:session  "},
		{name: "empty", input: "  ", wantErr: ErrEmptyStepID},
		{name: "leading colon", input: ":baseline", wantErr: ErrInvalidStepID},
		{name: "space inside", input: "apt: baseline", wantErr: ErrInvalidStepID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := NewStepID(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, id.IsZero())
		})
	}
}

func TestStepID_Area(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "telemetry", MustNewStepID("telemetry:session").Area())
	assert.Equal(t, "standalone", MustNewStepID("standalone").Area())
}

func TestMustNewStepID_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustNewStepID("") })
}
