// Package bot interprets inbound messages against per-sender conversation
// state and routes accepted media through the intake pipeline.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deepsift/deepsift/internal/classify"
	"github.com/deepsift/deepsift/internal/extract"
	"github.com/deepsift/deepsift/internal/session"
	"github.com/deepsift/deepsift/internal/whatsapp"
)

// Handler is the conversation entry point. Each inbound message produces
// exactly one reply; processing is synchronous end to end.
type Handler struct {
	sessions   session.Store
	pipeline   *Pipeline
	classifier *classify.Classifier
	text       TextDetector
	logger     *slog.Logger
}

// NewHandler creates the conversation handler.
func NewHandler(log *slog.Logger, sessions session.Store, pipeline *Pipeline, classifier *classify.Classifier, text TextDetector) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		sessions:   sessions,
		pipeline:   pipeline,
		classifier: classifier,
		text:       text,
		logger:     log.With(slog.String("service", "bot")),
	}
}

// Handle processes one inbound message and returns the reply to send.
func (h *Handler) Handle(ctx context.Context, msg whatsapp.Message) string {
	from := msg.From
	state := h.sessions.Get(from)

	// First contact always gets the welcome reply, whatever was sent; a
	// follow-up command is required to actually progress.
	if !state.Greeted {
		state.Greeted = true
		state.Mode = session.ModeNone
		h.sessions.Put(from, state)
		return welcomeMessage
	}

	switch msg.Type {
	case "text":
		body := ""
		if msg.Text != nil {
			body = msg.Text.Body
		}
		return h.handleText(ctx, from, state, body)
	case "image", "video", "document":
		media := msg.MediaRef()
		if media == nil || media.ID == "" {
			return unsupportedTypeMessage
		}
		return h.handleMedia(ctx, from, state, msg.Type, media)
	default:
		return unsupportedTypeMessage
	}
}

func (h *Handler) handleText(ctx context.Context, from string, state session.State, body string) string {
	next, reply, action := interpretText(state, body)
	if action == actionReply {
		h.sessions.Put(from, next)
		return reply
	}

	// Free text while text analysis is awaited: gate on the shared
	// minimum length before calling the detector. Too-short input keeps
	// the mode so the sender can retry immediately.
	trimmed := strings.TrimSpace(body)
	if len([]rune(trimmed)) < extract.MinChars {
		return fmt.Sprintf("📝 That text is too short to analyze (%d characters). Please send at least %d characters.",
			len([]rune(trimmed)), extract.MinChars)
	}

	result, err := h.text.Detect(ctx, trimmed)
	h.sessions.Reset(from)
	if err != nil {
		h.logger.Error("text detection failed", slog.Any("error", err))
		return "❌ Text analysis failed: " + truncateError(err) + "\n\nPlease try again later."
	}
	return formatTextReply(result)
}

func (h *Handler) handleMedia(ctx context.Context, from string, state session.State, msgType string, media *whatsapp.Media) string {
	_, category, _ := h.classifier.Classify(media.Filename, media.MimeType)
	// The declared message type is authoritative when it names a media
	// category directly; classification covers documents and edge cases.
	switch msgType {
	case "image":
		category = classify.CategoryImage
	case "video":
		category = classify.CategoryVideo
	}

	ok, corrective := acceptMedia(state.Mode, category, media.MimeType)
	if !ok {
		return corrective
	}

	reply, recordCreated := h.pipeline.Run(ctx, from, media, category)
	if recordCreated {
		// Terminal pipeline outcome, success or detection failure alike:
		// the sender starts over. A hard abort before a record exists
		// keeps the mode so they can resend without re-selecting.
		h.sessions.Reset(from)
	}
	return reply
}
