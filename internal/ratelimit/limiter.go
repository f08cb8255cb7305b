package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window per-caller rate limiter backed by Redis, so the
// budget holds across instances. It gates upstream refresh triggers only;
// cached reads are never limited.
type Limiter struct {
	client *redis.Client
	max    int64
	window time.Duration
	prefix string
}

// NewLimiter allows max refresh triggers per caller per window.
func NewLimiter(client *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		max:    int64(max),
		window: window,
		prefix: "courtside:ratelimit",
	}
}

// Allow reports whether the caller may trigger an upstream fetch. Redis
// being unreachable fails open: a degraded limiter must not take reads down
// with it.
func (l *Limiter) Allow(ctx context.Context, caller string) bool {
	if l == nil || l.client == nil {
		return true
	}

	key := fmt.Sprintf("%s:%s", l.prefix, caller)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] redis error for %s: %v (allowing)", caller, err)
		return true
	}
	if count == 1 {
		// First hit in the window owns the expiry.
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("[ratelimit] failed to set window for %s: %v", caller, err)
		}
	}

	if count > l.max {
		log.Printf("[ratelimit] caller %s over budget (%d/%d)", caller, count, l.max)
		return false
	}
	return true
}

// Reset clears the caller's window (for testing and admin use).
func (l *Limiter) Reset(ctx context.Context, caller string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, caller)).Err()
}
