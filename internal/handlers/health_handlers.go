package handlers

import (
	"context"
	"net/http"
	"time"

	"notesaas/internal/caching"

	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	cacheSvc    caching.CacheService
	pingMessage string
	version     string
	startedAt   time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(cacheSvc caching.CacheService, pingMessage, version string) *HealthHandlers {
	return &HealthHandlers{
		cacheSvc:    cacheSvc,
		pingMessage: pingMessage,
		version:     version,
		startedAt:   time.Now(),
	}
}

// ReadinessStatus represents the state of the service dependencies
type ReadinessStatus struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Uptime   string            `json:"uptime"`
	Version  string            `json:"version"`
}

// Health godoc
// @Summary  Liveness check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the cache backing login throttling answers.
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := &ReadinessStatus{
		Status:   "ok",
		Services: map[string]string{"cache": "healthy"},
		Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
		Version:  h.version,
	}

	code := http.StatusOK
	if err := h.cacheSvc.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Services["cache"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

// Ping godoc
// @Summary  Connectivity check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /ping [get]
func (h *HealthHandlers) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": h.pingMessage})
}
