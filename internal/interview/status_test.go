package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "completed", "cancelled"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}

	_, err := ParseStatus("paused")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"start", StatusPending, StatusInProgress, true},
		{"cancel pending", StatusPending, StatusCancelled, true},
		{"complete", StatusInProgress, StatusCompleted, true},
		{"cancel in progress", StatusInProgress, StatusCancelled, true},
		{"skip to completed", StatusPending, StatusCompleted, false},
		{"restart completed", StatusCompleted, StatusInProgress, false},
		{"restart cancelled", StatusCancelled, StatusInProgress, false},
		{"complete cancelled", StatusCancelled, StatusCompleted, false},
		{"backwards", StatusInProgress, StatusPending, false},
		{"self pending", StatusPending, StatusPending, false},
		{"self in progress", StatusInProgress, StatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsTransitionAllowed(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusInProgress))
}
