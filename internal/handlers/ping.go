package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PingHandler serves the health check.
type PingHandler struct{}

// NewPingHandler creates the health handler.
func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

// Register registers the health route.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/health", h.HandlePing)
}

// HandlePing reports liveness.
func (h *PingHandler) HandlePing(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "deepsift",
	})
}
