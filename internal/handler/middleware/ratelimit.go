package middleware

import (
	"net/http"
	"sync"
	"time"

	"coupon-marketplace/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per customer. Must run after RequireActor.
type RateLimiter struct {
	cfg      config.RateLimitConfig
	mu       sync.Mutex
	visitors map[uuid.UUID]*visitor
	now      func() time.Time

	lastEvict time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		visitors: make(map[uuid.UUID]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(customerID uuid.UUID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[customerID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.visitors[customerID] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)

	rl.evictIdle(now)
	return allowed
}

// evictIdle scans at most once per limiterIdleTTL.
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastEvict) < limiterIdleTTL {
		return
	}
	rl.lastEvict = now
	for id, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(rl.visitors, id)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.cfg.Enabled {
			c.Next()
			return
		}
		userID, ok := GetUserID(c)
		if !ok {
			// Unexpected error: should be used after RequireActor()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Internal server error"},
			})
			c.Abort()
			return
		}
		if !rl.Allow(userID) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "Too many requests"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
