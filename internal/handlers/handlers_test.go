package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsift/deepsift/internal/history"
)

func TestPingHandler(t *testing.T) {
	t.Parallel()
	e := echo.New()
	NewPingHandler().Register(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "deepsift", body["service"])
}

func TestSessionHandler(t *testing.T) {
	t.Parallel()
	e := echo.New()
	NewSessionHandler().Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	sessionID, _ := body["session_id"].(string)
	assert.True(t, strings.HasPrefix(sessionID, "temp_"), "session_id = %q", sessionID)

	// Each call mints a fresh id.
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	var body2 map[string]any
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &body2))
	assert.NotEqual(t, body["session_id"], body2["session_id"])
}

func TestListResponse(t *testing.T) {
	t.Parallel()

	resp := listResponse(nil)
	assert.Equal(t, 0, resp["count"])
	records, ok := resp["data"].([]history.Record)
	require.True(t, ok)
	assert.NotNil(t, records, "nil slice must serialize as [], not null")

	resp = listResponse([]history.Record{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, 2, resp["count"])
}
