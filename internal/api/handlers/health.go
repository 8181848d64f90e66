// Package handlers implements HTTP handlers for the discogs-alert API.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusResponse is the probe response body. Error is set only when the
// probe fails.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty"`
}

// Pinger reports whether the service can do useful work.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler creates a HealthHandler backed by p.
func NewHealthHandler(p Pinger) *HealthHandler {
	return &HealthHandler{pinger: p}
}

// Healthz always answers 200 while the process serves requests.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz answers 200 when the wantlist loads and 503 with the cause
// otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.pinger.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status: "unavailable",
			Error:  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
