package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"dice_duel/internal/store"
	"dice_duel/internal/ws"

	"github.com/gin-gonic/gin"
)

// probeKey is read on every readiness check; it is never written.
const probeKey = "__health"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store     store.Store
	hub       *ws.Hub
	backend   string
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s store.Store, hub *ws.Hub, backend, version string) *HealthHandler {
	return &HealthHandler{
		store:     s,
		hub:       hub,
		backend:   backend,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ping succeeds when the backend answers, found or not.
func (h *HealthHandler) ping(ctx context.Context) error {
	_, err := h.store.Get(ctx, probeKey)
	if err == nil || errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Readiness returns detailed health status (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if err := h.ping(ctx); err != nil {
		checks["store"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else {
		checks["store"] = "healthy"
	}
	checks["backend"] = h.backend
	checks["watchers"] = strconv.Itoa(h.hub.Total())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Health is a combined endpoint for basic health checks
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
