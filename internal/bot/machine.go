package bot

import (
	"strings"

	"github.com/deepsift/deepsift/internal/classify"
	"github.com/deepsift/deepsift/internal/session"
)

// textAction is what the state machine wants done after interpreting a
// text message.
type textAction int

const (
	actionReply      textAction = iota // just send the reply
	actionDetectText                   // run text detection on the body
)

// command keyword sets, matched case-insensitively after trimming.
var (
	greetWords = map[string]bool{"hi": true, "hello": true, "hey": true, "start": true}
	helpWords  = map[string]bool{"help": true, "info": true, "?": true, "support": true}
	imageWords = map[string]bool{"1": true, "image": true, "photo": true, "picture": true}
	videoWords = map[string]bool{"2": true, "video": true, "vid": true}
	textWords  = map[string]bool{"3": true, "text": true, "txt": true}
)

// interpretText applies the transition table for text input and returns
// the next state, the reply, and whether text detection should run.
// Detection outcomes (including failures) are handled by the caller,
// which owns the terminal state reset.
func interpretText(state session.State, body string) (session.State, string, textAction) {
	normalized := strings.ToLower(strings.TrimSpace(body))

	switch {
	case greetWords[normalized]:
		state.Mode = session.ModeNone
		return state, welcomeMessage, actionReply
	case helpWords[normalized]:
		return state, helpMessage, actionReply
	case imageWords[normalized]:
		state.Mode = session.ModeImage
		return state, promptImage, actionReply
	case videoWords[normalized]:
		state.Mode = session.ModeVideo
		return state, promptVideo, actionReply
	case textWords[normalized]:
		state.Mode = session.ModeText
		return state, promptText, actionReply
	}

	if state.Mode == session.ModeText {
		return state, "", actionDetectText
	}

	return state, unclearMessage, actionReply
}

// acceptMedia decides whether inbound media of the given category may
// proceed into the intake pipeline given the currently awaited mode.
// Documents act as the catch-all type: while an image or video is awaited
// they pass only when their mime prefix matches, otherwise they always
// pass.
func acceptMedia(mode session.Mode, category classify.Category, mimeType string) (bool, string) {
	switch mode {
	case session.ModeImage:
		if category == classify.CategoryImage {
			return true, ""
		}
		if category == classify.CategoryDocument && strings.HasPrefix(mimeType, "image/") {
			return true, ""
		}
		return false, "🖼 I'm waiting for an *image*. Please send an image, or pick another analysis type first.\n\n" + helpMessage
	case session.ModeVideo:
		if category == classify.CategoryVideo {
			return true, ""
		}
		if category == classify.CategoryDocument && strings.HasPrefix(mimeType, "video/") {
			return true, ""
		}
		return false, "🎥 I'm waiting for a *video*. Please send a video, or pick another analysis type first.\n\n" + helpMessage
	case session.ModeText:
		if category == classify.CategoryDocument {
			return true, ""
		}
		return false, "📝 I'm waiting for *text or a document*. Please send a document, or pick another analysis type first.\n\n" + helpMessage
	default:
		// No mode selected. Documents are the catch-all content type and
		// proceed anyway; images and videos need an explicit selection.
		if category == classify.CategoryDocument {
			return true, ""
		}
		return false, "⚠ Please choose an analysis type before sending content.\n\n" + welcomeMessage
	}
}
