package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrediction(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "AI", normalizePrediction("ai"))
	assert.Equal(t, "AI", normalizePrediction("AI-Generated"))
	assert.Equal(t, "AI", normalizePrediction(" fake "))
	assert.Equal(t, "Human", normalizePrediction("HUMAN"))
	assert.Equal(t, "Human", normalizePrediction("real"))
	assert.Equal(t, "UNCERTAIN", normalizePrediction("maybe"))
	assert.Equal(t, "UNCERTAIN", normalizePrediction(""))
}

func TestTextClient_Detect(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect_text", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "is this written by a machine?", req["text"])

		json.NewEncoder(w).Encode(map[string]any{
			"prediction": "human",
			"confidence": 0.74,
			"agreement":  "2/3 models",
		})
	}))
	defer srv.Close()

	client := NewTextClient(nil, srv.URL, time.Second)
	result, err := client.Detect(context.Background(), "is this written by a machine?")
	require.NoError(t, err)
	assert.Equal(t, "Human", result.Prediction)
	assert.InDelta(t, 0.74, result.Confidence, 1e-9)
	assert.Equal(t, "2/3 models", result.Agreement)
}

func TestTextClient_BadStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "text too short", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewTextClient(nil, srv.URL, time.Second)
	_, err := client.Detect(context.Background(), "short")
	require.Error(t, err)

	var detErr *Error
	require.ErrorAs(t, err, &detErr)
	assert.Equal(t, "text detect", detErr.Op)
	assert.Contains(t, err.Error(), "text too short")
}
