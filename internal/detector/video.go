package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// VideoClient calls the multimodal video detection service. Video jobs run
// long; the client timeout is deliberately generous (minutes, not seconds).
type VideoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewVideoClient creates a video detector client.
func NewVideoClient(log *slog.Logger, baseURL, apiKey string, timeout time.Duration) *VideoClient {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &VideoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "video_detector")),
	}
}

type videoRequest struct {
	VideoURL string `json:"video_url"`
	FailFast bool   `json:"fail_fast"`
}

type videoResponse struct {
	Verdict      string  `json:"verdict"`
	Confidence   float64 `json:"confidence"`
	Layers       []Layer `json:"layers"`
	TotalSeconds float64 `json:"total_seconds"`
}

// Detect sends the asset's public URL for layered analysis and blocks
// until the service returns its final verdict.
func (c *VideoClient) Detect(ctx context.Context, videoURL string) (VideoResult, error) {
	payload, err := json.Marshal(videoRequest{VideoURL: videoURL, FailFast: true})
	if err != nil {
		return VideoResult{}, wrapErr("video detect", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect_video", bytes.NewReader(payload))
	if err != nil {
		return VideoResult{}, wrapErr("video detect", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VideoResult{}, wrapErr("video detect", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return VideoResult{}, wrapErr("video detect",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var decoded videoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return VideoResult{}, wrapErr("video detect", fmt.Errorf("decode response: %w", err))
	}

	result := VideoResult{
		Verdict:      normalizeVerdict(decoded.Verdict),
		Confidence:   clamp01(decoded.Confidence),
		Layers:       decoded.Layers,
		TotalSeconds: decoded.TotalSeconds,
	}
	c.logger.Info("video verdict",
		slog.String("verdict", string(result.Verdict)),
		slog.Float64("confidence", result.Confidence),
		slog.Int("layers", len(result.Layers)),
		slog.Duration("elapsed", time.Since(started)))
	return result, nil
}

func normalizeVerdict(v string) Verdict {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "fake", "deepfake", "ai", "ai-generated":
		return VerdictFake
	case "real", "authentic", "human":
		return VerdictReal
	default:
		return VerdictUncertain
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
