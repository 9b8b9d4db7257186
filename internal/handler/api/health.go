package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/internal/worker"

	"github.com/gin-gonic/gin"
)

const dbPingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type WorkerMonitor interface {
	Heartbeats() []worker.Heartbeat
	StaleTasks(maxCycle time.Duration) []string
}

type HealthHandler struct {
	store          Pinger
	workers        WorkerMonitor
	workersEnabled bool
	maxCycle       time.Duration
}

func NewHealthHandler(store Pinger, workers WorkerMonitor, cfg config.Config) *HealthHandler {
	return &HealthHandler{
		store:          store,
		workers:        workers,
		workersEnabled: cfg.Sweeper.Enabled,
		maxCycle:       cfg.Health.MaxWorkerCycle,
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

// @Summary Store health
// @Description Ping the backing store
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health/db [get]
func (h *HealthHandler) DB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbPingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("store ping failed", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Worker health
// @Description Report background task heartbeats; stale when a task has not succeeded within twice the longest cycle
// @Tags health
// @Produce json
// @Success 200 {object} resdto.WorkersHealthResponse
// @Failure 503 {object} resdto.WorkersHealthResponse
// @Router /health/workers [get]
func (h *HealthHandler) Workers(c *gin.Context) {
	resp := resdto.WorkersHealthResponse{
		Status:  "ok",
		Workers: resdto.FromHeartbeats(h.workers.Heartbeats()),
	}
	if !h.workersEnabled {
		resp.Status = "disabled"
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Stale = h.workers.StaleTasks(h.maxCycle)
	if len(resp.Stale) > 0 {
		resp.Status = "stale"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
