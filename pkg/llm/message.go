package llm

// Role identifies the author of a message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ContentType distinguishes parts of a multi-part message.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// ContentPart is one segment of a message: plain text, or an image reference
// for vision models.
type ContentPart struct {
	Type     ContentType
	Text     string
	ImageURL string
}

// Message is a single chat message composed of ordered content parts.
// Structured sources send text-only messages; image profiling sends a
// two-part text+image payload.
type Message struct {
	Role  Role
	Parts []ContentPart
}

// TextMessage builds a single-part text message.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []ContentPart{{Type: ContentText, Text: text}}}
}

// joinedText concatenates the text parts of a message.
func (m Message) joinedText() string {
	var out string
	for _, p := range m.Parts {
		if p.Type == ContentText {
			out += p.Text
		}
	}
	return out
}
