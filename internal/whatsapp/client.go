// Package whatsapp is the Cloud API messaging collaborator: sending
// replies, downloading inbound media, and marking messages read.
package whatsapp

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

const clientTimeout = 30 * time.Second

// Client talks to the WhatsApp Cloud (Graph) API for one phone number.
type Client struct {
	baseURL       string
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a Cloud API client.
func NewClient(log *slog.Logger, baseURL, accessToken, phoneNumberID string) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		httpClient:    &http.Client{Timeout: clientTimeout},
		logger:        log.With(slog.String("service", "whatsapp")),
	}
}

// SendText sends a text message to the recipient.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	if err := c.postMessages(ctx, payload); err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	return nil
}

// MarkRead marks an inbound message as read. Failures are not fatal to
// message handling and callers typically log and continue.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	if err := c.postMessages(ctx, payload); err != nil {
		return fmt.Errorf("mark read %s: %w", messageID, err)
	}
	return nil
}

// DownloadMedia resolves a media id to its ephemeral URL and fetches the
// bytes. Returns the content, the authoritative mime type, and the raw
// media metadata.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return nil, "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", nil, fmt.Errorf("lookup media %s: %w", mediaID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", nil, fmt.Errorf("lookup media %s: status %d", mediaID, resp.StatusCode)
	}

	var meta map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, "", nil, fmt.Errorf("decode media metadata: %w", err)
	}
	mediaURL, _ := meta["url"].(string)
	mimeType, _ := meta["mime_type"].(string)
	if mediaURL == "" {
		return nil, "", nil, fmt.Errorf("media %s has no url", mediaID)
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", nil, err
	}
	dlReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	dlResp, err := c.httpClient.Do(dlReq)
	if err != nil {
		return nil, "", nil, fmt.Errorf("download media %s: %w", mediaID, err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != http.StatusOK {
		return nil, "", nil, fmt.Errorf("download media %s: status %d", mediaID, dlResp.StatusCode)
	}

	data, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return nil, "", nil, fmt.Errorf("read media %s: %w", mediaID, err)
	}
	c.logger.Debug("media downloaded",
		slog.String("media_id", mediaID),
		slog.String("mime", mimeType),
		slog.Int("size", len(data)))
	return data, mimeType, meta, nil
}

func (c *Client) postMessages(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
