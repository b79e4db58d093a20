package backend

// Role identifies the author of a message in a conversation snapshot.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// SystemMessageID is the id the backend uses for the root system message.
// It is never a candidate reply.
const SystemMessageID = "system"

// ContentTypeText is the content type of plain text parts.
const ContentTypeText = "text"

// ContentPart is one part of a submitted message.
type ContentPart struct {
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// MessageInput is the message carried by a submit request.
type MessageInput struct {
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
	Model   string        `json:"model"`
}

// PostMessageRequest is the body of POST /conversation.
type PostMessageRequest struct {
	ConversationID   string       `json:"conversation_id"`
	Message          MessageInput `json:"message"`
	BotID            *string      `json:"bot_id"`
	ContinueGenerate bool         `json:"continue_generate"`
}

// NewTextRequest builds a submit request for a single user text message.
func NewTextRequest(conversationID, text, model string) PostMessageRequest {
	return PostMessageRequest{
		ConversationID: conversationID,
		Message: MessageInput{
			Role:    RoleUser,
			Content: []ContentPart{{ContentType: ContentTypeText, Body: text}},
			Model:   model,
		},
		BotID:            nil,
		ContinueGenerate: false,
	}
}

// PostMessageResponse is the acknowledgement returned by POST /conversation.
type PostMessageResponse struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

// SnapshotContent is one content part of a message inside a snapshot.
type SnapshotContent struct {
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

// MessageRecord is a single message of a conversation snapshot. ID and
// Position are filled from the enclosing messageMap; Position is the
// zero-based order in which the entry appeared in the payload.
type MessageRecord struct {
	ID         string            `json:"-"`
	Position   int               `json:"-"`
	Role       Role              `json:"role"`
	Parent     string            `json:"parent"`
	Content    []SnapshotContent `json:"content"`
	CreateTime float64           `json:"createTime"`
}

// Conversation is the snapshot returned by GET /conversation/{id}.
type Conversation struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Messages MessageMap `json:"messageMap"`
}
