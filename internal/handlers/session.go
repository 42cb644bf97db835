package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deepsift/deepsift/internal/classify"
)

// SessionHandler issues temporary session ids for anonymous callers.
type SessionHandler struct{}

// NewSessionHandler creates the session handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Register registers the session route.
func (h *SessionHandler) Register(e *echo.Echo) {
	e.POST("/api/session", h.HandleCreate)
}

// HandleCreate synthesizes a fresh temporary session id.
func (h *SessionHandler) HandleCreate(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{
		"success":    true,
		"session_id": classify.TempSessionID(),
	})
}
