// Package cache holds the Redis-backed hot-path stores: the engagement
// counter and the profile snapshot cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	countKeyPrefix = "likes:count:"
	flagKeyPrefix  = "likes:flag:"
)

// Counter is the low-latency engagement counter with per-actor idempotency
// flags. It is the primary store; the durable shadow log lives in the
// repository layer and is written asynchronously by the service.
type Counter struct {
	client  *redis.Client
	flagTTL time.Duration
}

func NewCounter(client *redis.Client, flagTTL time.Duration) *Counter {
	if flagTTL <= 0 {
		flagTTL = 720 * time.Hour
	}
	return &Counter{client: client, flagTTL: flagTTL}
}

func (c *Counter) Available() bool { return c != nil && c.client != nil }

func countKey(postID string) string { return countKeyPrefix + postID }

func flagKey(postID, actorID string) string {
	return fmt.Sprintf("%s%s:%s", flagKeyPrefix, postID, actorID)
}

// Init sets the counter to zero unless it already exists.
func (c *Counter) Init(ctx context.Context, postID string) error {
	return c.client.SetNX(ctx, countKey(postID), 0, 0).Err()
}

// Incr applies a like once per actor. Returns the resulting count and
// whether this call actually incremented (false = the actor had already
// liked and the call was a no-op).
func (c *Counter) Incr(ctx context.Context, postID, actorID string) (int64, bool, error) {
	set, err := c.client.SetNX(ctx, flagKey(postID, actorID), 1, c.flagTTL).Result()
	if err != nil {
		return 0, false, err
	}
	if !set {
		n, err := c.Get(ctx, postID)
		return n, false, err
	}
	n, err := c.client.Incr(ctx, countKey(postID)).Result()
	return n, true, err
}

// Decr reverses a like if the actor's flag is present. The counter is
// clamped at zero so rebuild or race artifacts never drive it negative.
func (c *Counter) Decr(ctx context.Context, postID, actorID string) (int64, bool, error) {
	removed, err := c.client.Del(ctx, flagKey(postID, actorID)).Result()
	if err != nil {
		return 0, false, err
	}
	if removed == 0 {
		n, err := c.Get(ctx, postID)
		return n, false, err
	}
	n, err := c.client.Decr(ctx, countKey(postID)).Result()
	if err != nil {
		return 0, false, err
	}
	if n < 0 {
		// clamp; concurrent decrements may briefly observe the negative
		if err := c.client.Set(ctx, countKey(postID), 0, 0).Err(); err != nil {
			return 0, true, err
		}
		n = 0
	}
	return n, true, nil
}

// Get returns the current count, zero when the key is missing.
func (c *Counter) Get(ctx context.Context, postID string) (int64, error) {
	n, err := c.client.Get(ctx, countKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Set overwrites a counter; used by the offline rebuild only.
func (c *Counter) Set(ctx context.Context, postID string, value int64) error {
	if value < 0 {
		value = 0
	}
	return c.client.Set(ctx, countKey(postID), value, 0).Err()
}
