package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Result contains the rate limit check result.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is the interface for rate limiters.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int) (*Result, error)
}

// Limiter implements rate limiting using a Redis sliding window, shared
// across control-plane replicas.
type Limiter struct {
	client *redis.Client
	window time.Duration
}

// NewLimiter creates a new Redis-backed rate limiter.
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		window: time.Minute,
	}
}

// Allow checks if a request is allowed under the rate limit.
// Uses a sliding window algorithm with Redis sorted sets.
func (l *Limiter) Allow(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))

	countCmd := pipe.ZCard(ctx, key)

	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})

	pipe.Expire(ctx, key, l.window+time.Second)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis pipeline failed: %w", err)
	}

	count := countCmd.Val()
	remaining := limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   count < int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
	}

	if !result.Allowed {
		l.client.ZPopMin(ctx, key)
		result.Remaining = 0
	}

	return result, nil
}

// InMemoryLimiter provides a per-process rate limiter built on token
// buckets, used when Redis is not configured. Limits are per replica,
// not fleet-wide.
type InMemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	window   time.Duration
}

// NewInMemoryLimiter creates a new in-memory rate limiter.
func NewInMemoryLimiter() *InMemoryLimiter {
	return &InMemoryLimiter{
		limiters: make(map[string]*rate.Limiter),
		window:   time.Minute,
	}
}

// Allow checks if a request is allowed under the rate limit.
func (l *InMemoryLimiter) Allow(ctx context.Context, key string, limit int) (*Result, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok || lim.Burst() != limit {
		lim = rate.NewLimiter(rate.Limit(float64(limit)/l.window.Seconds()), limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := time.Now()
	allowed := lim.Allow()

	remaining := int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
	}, nil
}
