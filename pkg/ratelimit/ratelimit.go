package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"sheesh.app/server/pkg/apperror"
)

// Error is returned when an action is attempted again inside its cooldown.
type Error struct {
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return apperror.ErrRateLimitExceeded }

// Reserve is CheckAndSet that reports a refusal as *Error.
func Reserve(ctx context.Context, rdb *redis.Client, subject, action string, limit time.Duration) error {
	allowed, err := CheckAndSet(ctx, rdb, subject, action, limit)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}

	ttl, _ := TTL(ctx, rdb, subject, action)
	if ttl <= 0 {
		ttl = limit
	}
	return &Error{
		Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", math.Ceil(ttl.Seconds())),
		RetryAfter: ttl,
	}
}

// CheckAndSet reserves the (subject, action) slot for limit. It reports false while a previous
// reservation is still alive. A nil client disables limiting.
func CheckAndSet(ctx context.Context, rdb *redis.Client, subject, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(subject, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func TTL(ctx context.Context, rdb *redis.Client, subject, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(subject, action)).Result()
}

func Clear(ctx context.Context, rdb *redis.Client, subject, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(subject, action)).Result()
	return err
}

func key(subject, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", subject, action)
}
