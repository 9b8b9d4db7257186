//go:build unit

package middleware

import (
	"testing"
	"time"

	"coupon-marketplace/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(cfg config.RateLimitConfig) (*RateLimiter, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(cfg)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterAllow(t *testing.T) {
	rl, now := newTestLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
	alice, bob := uuid.New(), uuid.New()

	assert.True(t, rl.Allow(alice))
	assert.True(t, rl.Allow(alice))
	assert.False(t, rl.Allow(alice), "burst exhausted")
	assert.True(t, rl.Allow(bob), "buckets are per customer")

	*now = now.Add(time.Second)
	assert.True(t, rl.Allow(alice))
	assert.False(t, rl.Allow(alice))
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl, now := newTestLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	alice, bob := uuid.New(), uuid.New()

	rl.Allow(alice)
	*now = now.Add(limiterIdleTTL + time.Second)
	rl.Allow(bob)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, alice)
	assert.Contains(t, rl.visitors, bob)
}

func TestRateLimiterEvictsAtMostOncePerTTL(t *testing.T) {
	rl, now := newTestLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	alice, bob := uuid.New(), uuid.New()

	rl.Allow(alice)
	swept := rl.lastEvict

	*now = now.Add(limiterIdleTTL / 2)
	rl.Allow(bob)
	assert.Equal(t, swept, rl.lastEvict, "no scan inside the ttl")

	*now = now.Add(limiterIdleTTL/2 + time.Second)
	rl.Allow(bob)
	assert.Equal(t, *now, rl.lastEvict)
	assert.NotContains(t, rl.visitors, alice)
	assert.Contains(t, rl.visitors, bob)
}
