package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deepsift/deepsift/internal/whatsapp"
)

// messageProcessor produces exactly one reply per inbound message.
type messageProcessor interface {
	Handle(ctx context.Context, msg whatsapp.Message) string
}

// replySender is the outbound slice of the messaging collaborator.
type replySender interface {
	SendText(ctx context.Context, to, body string) error
	MarkRead(ctx context.Context, messageID string) error
}

// WebhookHandler receives WhatsApp Cloud API webhook callbacks.
type WebhookHandler struct {
	logger      *slog.Logger
	verifyToken string
	sender      replySender
	bot         messageProcessor
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(log *slog.Logger, verifyToken string, sender replySender, bot messageProcessor) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		logger:      log.With(slog.String("handler", "webhook")),
		verifyToken: verifyToken,
		sender:      sender,
		bot:         bot,
	}
}

// Register registers the webhook routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/webhook", h.HandleVerify)
	e.POST("/webhook", h.HandleEvent)
}

// HandleVerify answers the subscription handshake: echo the challenge
// only when the verify token matches.
func (h *WebhookHandler) HandleVerify(c echo.Context) error {
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")
	if token != h.verifyToken {
		h.logger.Warn("webhook verification failed")
		return c.String(http.StatusForbidden, "Verification failed")
	}
	h.logger.Info("webhook verified")
	return c.String(http.StatusOK, challenge)
}

// HandleEvent processes an inbound event batch. Handling runs
// synchronously for the full pipeline duration; the response is always
// 200 so the platform does not retry mid-analysis.
func (h *WebhookHandler) HandleEvent(c echo.Context) error {
	var event whatsapp.Event
	if err := c.Bind(&event); err != nil {
		h.logger.Warn("invalid webhook payload", slog.Any("error", err))
		return c.String(http.StatusOK, "ok")
	}

	// Detach from the request context: long detector calls must not die
	// with the platform's own HTTP timeout.
	ctx := context.WithoutCancel(c.Request().Context())

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.processMessage(ctx, msg)
			}
		}
	}
	return c.String(http.StatusOK, "ok")
}

func (h *WebhookHandler) processMessage(ctx context.Context, msg whatsapp.Message) {
	if msg.From == "" {
		return
	}
	if msg.ID != "" {
		if err := h.sender.MarkRead(ctx, msg.ID); err != nil {
			h.logger.Debug("mark read failed", slog.String("message_id", msg.ID), slog.Any("error", err))
		}
	}

	reply := h.bot.Handle(ctx, msg)
	if reply == "" {
		return
	}
	if err := h.sender.SendText(ctx, msg.From, reply); err != nil {
		h.logger.Error("send reply failed", slog.String("to", msg.From), slog.Any("error", err))
	}
}
