// Copyright (c) 2026 HKSD Tech. All rights reserved.

package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hksd-tech/hksd-api/internal/platform/constants"
)

// # Redis Throttle

// RedisThrottle implements [Throttle] with a SETNX-style claim.
//
// The key carries the throttle window as its TTL, so Redis expires the claim
// exactly when a resend becomes legal again. Losing the Redis instance only
// loses the fast path; the SQL resend check still holds the invariant.
type RedisThrottle struct {
	client *redis.Client
}

// NewRedisThrottle creates a Redis-backed send throttle.
func NewRedisThrottle(client *redis.Client) *RedisThrottle {
	return &RedisThrottle{client: client}
}

/*
TryAcquire claims the resend slot for a phone. The key is keyed by phone
alone, so the window spans both caller domains.

Parameters:
  - context: context.Context
  - phone: string
  - window: time.Duration

Returns:
  - bool: false when another send already holds the slot
  - error: Redis connectivity failures
*/
func (throttle *RedisThrottle) TryAcquire(context context.Context, phone string, window time.Duration) (bool, error) {
	key := constants.RedisPrefixSendThrottle + phone

	acquired, err := throttle.client.SetNX(context, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("verification_throttle_setnx_failed: %w", err)
	}

	return acquired, nil
}
