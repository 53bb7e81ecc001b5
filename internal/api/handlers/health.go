package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReadyFunc reports whether the monitor is scheduled and polling.
type ReadyFunc func(ctx context.Context) error

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	ready ReadyFunc
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(ready ReadyFunc) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Healthz returns 200 while the process is running, even when monitoring
// is disabled by an invalid task configuration.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, ProbeResponse{Status: "ok"})
}

// Readyz returns 200 once the scheduler is running, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.ready(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, ProbeResponse{
			Status: "unavailable",
			Reason: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, ProbeResponse{Status: "ready"})
}
