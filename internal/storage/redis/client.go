package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexra/user-service/internal/model"
)

var _ model.KeyValueStore = (*Client)(nil)

// incrWithTTL increments a counter and attaches the TTL only on the first
// increment, so the window never slides on repeated attempts.
var incrWithTTL = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

// compareDelete removes the key only when its value matches, so a failed
// comparison cannot consume the stored value.
var compareDelete = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		redis.call('DEL', KEYS[1])
		return 1
	end
	return 0
`)

// Client implements model.KeyValueStore over a Redis connection.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a key-value store client and verifies connectivity.
func NewClient(ctx context.Context, rdb *redis.Client) (*Client, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Set stores value under key with the given time-to-live.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Get returns the value for key, or model.ErrNotFound when absent or expired.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

// GetDelete atomically reads and removes key. Concurrent callers see at most
// one success; this backs single-use OTP consumption.
func (c *Client) GetDelete(ctx context.Context, key string) (string, error) {
	value, err := c.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get-delete key: %w", err)
	}
	return value, nil
}

// CompareDelete atomically removes key when its value equals expected.
func (c *Client) CompareDelete(ctx context.Context, key, expected string) (bool, error) {
	result, err := compareDelete.Run(ctx, c.rdb, []string{key}, expected).Result()
	if err != nil {
		return false, fmt.Errorf("failed to compare-delete key: %w", err)
	}

	deleted, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected compare-delete result type %T", result)
	}
	return deleted == 1, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}
	return n > 0, nil
}

// IncrementWithTTL atomically increments the counter at key, starting its
// expiry window on the first increment, and returns the new count.
func (c *Client) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	result, err := incrWithTTL.Run(ctx, c.rdb, []string{key}, ttl.Milliseconds()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key: %w", err)
	}

	count, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected increment result type %T", result)
	}
	return count, nil
}
