// Package cache wraps the optional Redis layer: public board caching and
// interview lifecycle event publishing.
//
// The whole package is nil-safe. When REDIS_URL is unset the server runs
// with a nil *Cache and every method becomes a no-op, so callers never
// branch on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	boardCacheTTL = 60 * time.Second

	// InterviewEventsChannel carries interview lifecycle events for
	// downstream consumers (notifications, analytics).
	InterviewEventsChannel = "interview_events"
)

// Cache holds the Redis connection.
type Cache struct {
	rdb *redis.Client
}

// Connect creates and verifies a Redis client connection.
func Connect(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func boardKey(query string) string {
	return "board:jobs:" + query
}

// GetBoard returns a cached board listing for the given search query, or
// false when there is no usable entry.
func (c *Cache) GetBoard(ctx context.Context, query string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, boardKey(query)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// SetBoard caches a board listing for 60 seconds. Failures are logged and
// swallowed so caching never breaks a request.
func (c *Cache) SetBoard(ctx context.Context, query string, value any) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to marshal board listing: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, boardKey(query), raw, boardCacheTTL).Err(); err != nil {
		log.Printf("cache: failed to cache board listing: %v", err)
	}
}

// InvalidateBoard drops every cached board listing. Called after any job
// mutation so the public board never serves stale rows past the TTL.
func (c *Cache) InvalidateBoard(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, boardKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("cache: failed to invalidate %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: failed to scan board keys: %v", err)
	}
}

// InterviewEvent is published on InterviewEventsChannel.
type InterviewEvent struct {
	Type        string    `json:"type"`
	InterviewID string    `json:"interview_id"`
	CandidateID string    `json:"candidate_id"`
	JobID       string    `json:"job_id"`
	At          time.Time `json:"at"`
}

// PublishInterviewEvent publishes an interview lifecycle event. Publishing
// is best effort: failures are logged, never returned.
func (c *Cache) PublishInterviewEvent(ctx context.Context, event InterviewEvent) {
	if c == nil || c.rdb == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("cache: failed to marshal interview event: %v", err)
		return
	}
	if err := c.rdb.Publish(ctx, InterviewEventsChannel, payload).Err(); err != nil {
		log.Printf("cache: failed to publish interview event: %v", err)
	}
}
