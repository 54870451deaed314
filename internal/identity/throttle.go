// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/laurea-app/laurea/internal/platform/constants"
)

// LoginThrottle bounds failed login attempts per client+email pair.
//
// The throttle is advisory hardening in front of the authenticator: when it
// is unavailable the login path proceeds rather than locking everyone out
// (availability over strictness, mirroring the notifier policy).
type LoginThrottle interface {

	// Allow reports whether another attempt may proceed for the key.
	Allow(ctx context.Context, key string) (bool, error)

	// RecordFailure counts one failed attempt against the key.
	RecordFailure(ctx context.Context, key string) error

	// Reset clears the counter after a successful authentication.
	Reset(ctx context.Context, key string) error
}

// RedisLoginThrottle implements [LoginThrottle] with a per-key counter that
// expires after the attempt window.
type RedisLoginThrottle struct {
	client *redis.Client
}

// NewRedisLoginThrottle creates the Redis-backed throttle.
func NewRedisLoginThrottle(client *redis.Client) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client}
}

// Allow checks the current failure count against the attempt limit.
func (t *RedisLoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	count, err := t.client.Get(ctx, constants.RedisPrefixLoginAttempts+key).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return true, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}

	return count < constants.LoginAttemptLimit, nil
}

// RecordFailure increments the failure counter, starting the expiry window
// on the first failure.
func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	count, err := t.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}

	if count == 1 {
		if err := t.client.Expire(ctx, redisKey, constants.LoginAttemptWindow).Err(); err != nil {
			return fmt.Errorf("redis_login_throttle_expire_failed: %w", err)
		}
	}

	return nil
}

// Reset deletes the failure counter.
func (t *RedisLoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, constants.RedisPrefixLoginAttempts+key).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_reset_failed: %w", err)
	}
	return nil
}
