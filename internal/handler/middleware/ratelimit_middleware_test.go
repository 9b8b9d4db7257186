//go:build unit

package middleware_test

import (
	"net/http"
	"testing"

	"coupon-marketplace/internal/handler/middleware"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(cfg config.RateLimitConfig, withActor bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rl := middleware.NewRateLimiter(cfg)

	chain := []gin.HandlerFunc{rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) }}
	if withActor {
		chain = append([]gin.HandlerFunc{middleware.RequireActor()}, chain...)
	}
	r := gin.New()
	r.POST("/reserve", chain...)
	return r
}

func TestRateLimiterMiddleware(t *testing.T) {
	t.Run("rejects once the burst is spent", func(t *testing.T) {
		r := limitedRouter(config.RateLimitConfig{Enabled: true, RPS: 0.01, Burst: 1}, true)
		customer := uuid.NewString()

		require.Equal(t, http.StatusNoContent, httptest.PerformRequest(t, r, http.MethodPost, "/reserve", nil, customer).Code)

		rec := httptest.PerformRequest(t, r, http.MethodPost, "/reserve", nil, customer)
		httptest.AssertErrorResponse(t, rec, http.StatusTooManyRequests, "Too many requests")
		httptest.AssertHeaders(t, rec, map[string]string{"Retry-After": "1"})

		other := httptest.PerformRequest(t, r, http.MethodPost, "/reserve", nil, uuid.NewString())
		assert.Equal(t, http.StatusNoContent, other.Code)
	})

	t.Run("disabled limiter passes everything", func(t *testing.T) {
		r := limitedRouter(config.RateLimitConfig{Enabled: false, RPS: 0.01, Burst: 1}, true)
		customer := uuid.NewString()

		for range 5 {
			rec := httptest.PerformRequest(t, r, http.MethodPost, "/reserve", nil, customer)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			httptest.AssertHeaders(t, rec, map[string]string{"Retry-After": ""})
		}
	})

	t.Run("without an actor the limiter refuses to guess", func(t *testing.T) {
		r := limitedRouter(config.RateLimitConfig{Enabled: true, RPS: 0.01, Burst: 1}, false)

		rec := httptest.PerformRequest(t, r, http.MethodPost, "/reserve", nil, uuid.NewString())
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "Internal server error")
	})
}
