package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusStamp(t *testing.T) {
	assert.Equal(t, ", started_at = NOW()", statusStamp("in_progress"))
	assert.Equal(t, ", completed_at = NOW()", statusStamp("completed"))

	// Cancelled interviews never completed
	assert.Empty(t, statusStamp("cancelled"))
	assert.Empty(t, statusStamp("pending"))
}
