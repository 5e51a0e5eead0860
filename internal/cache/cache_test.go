package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A nil cache must be a silent no-op everywhere; the server runs without
// Redis when REDIS_URL is unset.
func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest []string
	assert.False(t, c.GetBoard(ctx, "go", &dest))

	c.SetBoard(ctx, "go", []string{"job"})
	c.InvalidateBoard(ctx)
	c.PublishInterviewEvent(ctx, InterviewEvent{Type: "interview_started"})
	assert.NoError(t, c.Close())
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
