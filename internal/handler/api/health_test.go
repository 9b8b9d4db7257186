//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"coupon-marketplace/internal/handler/api"
	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/internal/worker"
	"coupon-marketplace/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeMonitor struct {
	beats []worker.Heartbeat
	stale []string
}

func (f fakeMonitor) Heartbeats() []worker.Heartbeat    { return f.beats }
func (f fakeMonitor) StaleTasks(time.Duration) []string { return f.stale }

func healthRouter(store api.Pinger, workers api.WorkerMonitor, sweeperEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	var cfg config.Config
	cfg.Sweeper.Enabled = sweeperEnabled
	cfg.Health.MaxWorkerCycle = time.Minute

	h := api.NewHealthHandler(store, workers, cfg)
	r := gin.New()
	r.GET("/health", h.Live)
	r.GET("/health/db", h.DB)
	r.GET("/health/workers", h.Workers)
	return r
}

func TestHealthHandler(t *testing.T) {
	lastRun := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	beats := []worker.Heartbeat{{Task: "reclaim_expired_holds", Interval: 10 * time.Second, LastRunAt: &lastRun, Runs: 3}}

	t.Run("live", func(t *testing.T) {
		rec := httptest.PerformRequest(t, healthRouter(fakePinger{}, fakeMonitor{}, true), http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("db ok and unavailable", func(t *testing.T) {
		rec := httptest.PerformRequest(t, healthRouter(fakePinger{}, fakeMonitor{}, true), http.MethodGet, "/health/db", nil, "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.PerformRequest(t, healthRouter(fakePinger{err: errors.New("refused")}, fakeMonitor{}, true), http.MethodGet, "/health/db", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	})

	t.Run("workers ok", func(t *testing.T) {
		rec := httptest.PerformRequest(t, healthRouter(fakePinger{}, fakeMonitor{beats: beats}, true), http.MethodGet, "/health/workers", nil, "")

		var body resdto.WorkersHealthResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, "ok", body.Status)
		if assert.Len(t, body.Workers, 1) {
			assert.Equal(t, "reclaim_expired_holds", body.Workers[0].Task)
			assert.Equal(t, "10s", body.Workers[0].Interval)
			assert.Equal(t, int64(3), body.Workers[0].Runs)
		}
	})

	t.Run("workers stale", func(t *testing.T) {
		monitor := fakeMonitor{beats: beats, stale: []string{"reclaim_expired_holds"}}
		rec := httptest.PerformRequest(t, healthRouter(fakePinger{}, monitor, true), http.MethodGet, "/health/workers", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"stale"`)
		assert.Contains(t, rec.Body.String(), `"stale":["reclaim_expired_holds"]`)
	})

	t.Run("workers disabled", func(t *testing.T) {
		monitor := fakeMonitor{stale: []string{"reclaim_expired_holds"}}
		rec := httptest.PerformRequest(t, healthRouter(fakePinger{}, monitor, false), http.MethodGet, "/health/workers", nil, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"disabled"`)
	})
}
