package whatsapp

// Webhook payload shapes for the Cloud API event subscription. Events
// arrive as entries carrying changes, each change carrying zero or more
// messages.

// Event is the top-level webhook POST body.
type Event struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []Message `json:"messages"`
}

// Message is one inbound message, discriminated by Type; exactly one of
// the payload fields matching Type is set.
type Message struct {
	From     string `json:"from"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Image    *Media `json:"image,omitempty"`
	Video    *Media `json:"video,omitempty"`
	Document *Media `json:"document,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
}

// MediaRef returns the media payload for the message type, or nil for
// text and unsupported types.
func (m Message) MediaRef() *Media {
	switch m.Type {
	case "image":
		return m.Image
	case "video":
		return m.Video
	case "document":
		return m.Document
	default:
		return nil
	}
}
