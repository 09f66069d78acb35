// Package throttle counts failed login attempts in Redis.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "poker-tracker:login-fail:"

// LoginThrottle blocks a key after maxAttempts failures inside window.
// The window starts at the first failure and is not extended by later ones.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// New creates a LoginThrottle backed by client.
func New(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// NewClient opens a Redis client and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return client, nil
}

func key(k string) string {
	return keyPrefix + k
}

// Allow reports whether another attempt for k is permitted.
func (t *LoginThrottle) Allow(ctx context.Context, k string) (bool, error) {
	n, err := t.client.Get(ctx, key(k)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read attempts: %w", err)
	}
	return n < t.maxAttempts, nil
}

// Fail records one failed attempt for k.
func (t *LoginThrottle) Fail(ctx context.Context, k string) error {
	n, err := t.client.Incr(ctx, key(k)).Result()
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if n == 1 {
		if err := t.client.Expire(ctx, key(k), t.window).Err(); err != nil {
			return fmt.Errorf("failed to set attempt window: %w", err)
		}
	}
	return nil
}

// Reset clears the failure count for k.
func (t *LoginThrottle) Reset(ctx context.Context, k string) error {
	if err := t.client.Del(ctx, key(k)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}
