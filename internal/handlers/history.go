package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deepsift/deepsift/internal/auth"
	"github.com/deepsift/deepsift/internal/history"
)

// HistoryHandler serves detection history reads.
type HistoryHandler struct {
	logger  *slog.Logger
	records *history.Service
}

// NewHistoryHandler creates the history handler.
func NewHistoryHandler(log *slog.Logger, records *history.Service) *HistoryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HistoryHandler{
		logger:  log.With(slog.String("handler", "history")),
		records: records,
	}
}

// Register registers the history routes.
func (h *HistoryHandler) Register(e *echo.Echo) {
	e.GET("/api/history", h.HandleList)
	e.GET("/api/history/:id", h.HandleGet)
}

// HandleList returns the caller's records: authenticated callers get
// their user history, anonymous callers their session history.
func (h *HistoryHandler) HandleList(c echo.Context) error {
	ctx := c.Request().Context()
	if userID := auth.UserIDFromContext(c); userID != "" {
		records, err := h.records.ListByUser(ctx, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, listResponse(records))
	}
	if sessionID := c.QueryParam("session_id"); sessionID != "" {
		records, err := h.records.ListBySession(ctx, sessionID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, listResponse(records))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "session not found: provide session_id or an authentication token")
}

// HandleGet returns one record, only to its owner.
func (h *HistoryHandler) HandleGet(c echo.Context) error {
	record, err := h.records.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if record.UserID != "" {
		if auth.UserIDFromContext(c) != record.UserID {
			return echo.NewHTTPError(http.StatusForbidden, "unauthorized access")
		}
	} else if c.QueryParam("session_id") != record.SessionID {
		return echo.NewHTTPError(http.StatusForbidden, "unauthorized access")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": record})
}

func listResponse(records []history.Record) map[string]any {
	if records == nil {
		records = []history.Record{}
	}
	return map[string]any{"success": true, "data": records, "count": len(records)}
}
