package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const uploadTimeout = 60 * time.Second

// SupabaseProvider talks to the Supabase storage HTTP API.
type SupabaseProvider struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSupabaseProvider creates a provider for the project at baseURL,
// authenticating with the service key.
func NewSupabaseProvider(log *slog.Logger, baseURL, serviceKey string) *SupabaseProvider {
	if log == nil {
		log = slog.Default()
	}
	return &SupabaseProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: uploadTimeout},
		logger:     log.With(slog.String("service", "storage")),
	}
}

// Upload writes data to bucket under key with upsert enabled, so an
// existing object under the same key is overwritten rather than erroring.
// Returns the public retrieval URL.
func (p *SupabaseProvider) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", p.baseURL, bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Authorization", "Bearer "+p.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload to bucket %s: %w", bucket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.Error("upload rejected",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return "", fmt.Errorf("%w: bucket %s status %d", ErrUploadRejected, bucket, resp.StatusCode)
	}

	p.logger.Info("uploaded object",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("size", len(data)))
	return p.PublicURL(bucket, key), nil
}

// PublicURL returns the unauthenticated retrieval URL for an object.
func (p *SupabaseProvider) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", p.baseURL, bucket, key)
}
