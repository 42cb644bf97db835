package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ImageClient calls the image detection service with raw bytes.
type ImageClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewImageClient creates an image detector client.
func NewImageClient(log *slog.Logger, baseURL string, timeout time.Duration) *ImageClient {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ImageClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "image_detector")),
	}
}

// Detect uploads the image and normalizes the response. Deployments of the
// backend disagree on field names, so parsing goes through an alias
// adapter rather than a fixed struct.
func (c *ImageClient) Detect(ctx context.Context, data []byte, mimeType string) (ImageResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "image"+extensionFor(mimeType))
	if err != nil {
		return ImageResult{}, wrapErr("image detect", err)
	}
	if _, err := part.Write(data); err != nil {
		return ImageResult{}, wrapErr("image detect", err)
	}
	if err := writer.Close(); err != nil {
		return ImageResult{}, wrapErr("image detect", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &body)
	if err != nil {
		return ImageResult{}, wrapErr("image detect", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ImageResult{}, wrapErr("image detect", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ImageResult{}, wrapErr("image detect",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var fields map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return ImageResult{}, wrapErr("image detect", fmt.Errorf("decode response: %w", err))
	}

	result := adaptImageResponse(fields)
	c.logger.Info("image verdict",
		slog.String("label", result.Label),
		slog.Bool("ai_generated", result.AIGenerated),
		slog.Float64("confidence", result.Confidence))
	return result, nil
}

// Alias priority for drifting backend schemas. Missing fields map to the
// defaults below instead of failing the call.
var (
	labelAliases      = []string{"label", "prediction", "class", "result"}
	confidenceAliases = []string{"confidence", "score", "probability"}
)

func adaptImageResponse(fields map[string]any) ImageResult {
	result := ImageResult{Label: "unknown"}
	for _, key := range labelAliases {
		if v, ok := fields[key].(string); ok && strings.TrimSpace(v) != "" {
			result.Label = strings.TrimSpace(v)
			break
		}
	}
	for _, key := range confidenceAliases {
		if v, ok := toFloat(fields[key]); ok {
			if v > 1 {
				v /= 100 // some deployments report percentages
			}
			result.Confidence = clamp01(v)
			break
		}
	}
	lower := strings.ToLower(result.Label)
	for _, marker := range []string{"ai", "fake", "generated"} {
		if strings.Contains(lower, marker) {
			result.AIGenerated = true
			break
		}
	}
	return result
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
