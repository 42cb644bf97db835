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

func TestAdaptImageResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  map[string]any
		wantRes ImageResult
	}{
		{
			name:    "canonical fields",
			fields:  map[string]any{"label": "real", "confidence": 0.93},
			wantRes: ImageResult{Label: "real", Confidence: 0.93, AIGenerated: false},
		},
		{
			name:    "prediction alias",
			fields:  map[string]any{"prediction": "AI-generated", "score": 0.8},
			wantRes: ImageResult{Label: "AI-generated", Confidence: 0.8, AIGenerated: true},
		},
		{
			name:    "class and probability aliases",
			fields:  map[string]any{"class": "fake", "probability": 0.7},
			wantRes: ImageResult{Label: "fake", Confidence: 0.7, AIGenerated: true},
		},
		{
			name:    "label outranks prediction",
			fields:  map[string]any{"label": "human", "prediction": "fake", "confidence": 0.5},
			wantRes: ImageResult{Label: "human", Confidence: 0.5, AIGenerated: false},
		},
		{
			name:    "confidence outranks score",
			fields:  map[string]any{"label": "real", "confidence": 0.4, "score": 0.9},
			wantRes: ImageResult{Label: "real", Confidence: 0.4},
		},
		{
			name:    "percentage scale normalized",
			fields:  map[string]any{"label": "real", "confidence": 87.0},
			wantRes: ImageResult{Label: "real", Confidence: 0.87},
		},
		{
			name:    "missing fields use defaults",
			fields:  map[string]any{},
			wantRes: ImageResult{Label: "unknown", Confidence: 0},
		},
		{
			name:    "blank label skipped",
			fields:  map[string]any{"label": "  ", "prediction": "generated"},
			wantRes: ImageResult{Label: "generated", AIGenerated: true},
		},
		{
			name:    "non-numeric confidence ignored",
			fields:  map[string]any{"label": "real", "confidence": "high"},
			wantRes: ImageResult{Label: "real", Confidence: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adaptImageResponse(tt.fields)
			assert.InDelta(t, tt.wantRes.Confidence, got.Confidence, 1e-9)
			got.Confidence = tt.wantRes.Confidence
			assert.Equal(t, tt.wantRes, got)
		})
	}
}

func TestImageClient_Detect(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "image.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{"prediction": "ai", "score": 0.91})
	}))
	defer srv.Close()

	client := NewImageClient(nil, srv.URL, time.Second)
	result, err := client.Detect(context.Background(), []byte{0x89, 0x50}, "image/png")
	require.NoError(t, err)
	assert.True(t, result.AIGenerated)
	assert.InDelta(t, 0.91, result.Confidence, 1e-9)
}

func TestImageClient_DetectServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewImageClient(nil, srv.URL, time.Second)
	_, err := client.Detect(context.Background(), []byte("x"), "image/jpeg")
	require.Error(t, err)

	var detErr *Error
	require.ErrorAs(t, err, &detErr)
	assert.Equal(t, "image detect", detErr.Op)
	assert.False(t, detErr.Timeout)
	assert.Contains(t, err.Error(), "503")
}

func TestExtensionFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".webp", extensionFor("IMAGE/WEBP"))
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".jpg", extensionFor(""))
}
