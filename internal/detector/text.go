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

// TextClient calls the ensemble text detection service.
type TextClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTextClient creates a text detector client.
func NewTextClient(log *slog.Logger, baseURL string, timeout time.Duration) *TextClient {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TextClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "text_detector")),
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Agreement  string  `json:"agreement"`
}

// Detect scores a text sample. Callers are responsible for the minimum
// length gate; the service rejects anything under 20 characters.
func (c *TextClient) Detect(ctx context.Context, text string) (TextResult, error) {
	payload, err := json.Marshal(textRequest{Text: text})
	if err != nil {
		return TextResult{}, wrapErr("text detect", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect_text", bytes.NewReader(payload))
	if err != nil {
		return TextResult{}, wrapErr("text detect", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TextResult{}, wrapErr("text detect", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return TextResult{}, wrapErr("text detect",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var decoded textResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return TextResult{}, wrapErr("text detect", fmt.Errorf("decode response: %w", err))
	}

	result := TextResult{
		Prediction: normalizePrediction(decoded.Prediction),
		Confidence: clamp01(decoded.Confidence),
		Agreement:  decoded.Agreement,
	}
	c.logger.Info("text verdict",
		slog.String("prediction", result.Prediction),
		slog.Float64("confidence", result.Confidence))
	return result, nil
}

func normalizePrediction(p string) string {
	switch strings.ToUpper(strings.TrimSpace(p)) {
	case "AI", "AI-GENERATED", "FAKE":
		return "AI"
	case "HUMAN", "REAL":
		return "Human"
	default:
		return "UNCERTAIN"
	}
}
