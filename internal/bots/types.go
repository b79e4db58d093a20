package bots

import "context"

// Platform identifies the messaging platform.
type Platform string

const PlatformTelegram Platform = "telegram"

// IncomingMessage represents a text message received from a chat.
type IncomingMessage struct {
	Platform  Platform
	ChatID    int64
	UserID    int64
	UserName  string // first name, used for greetings
	MessageID int
	Text      string
}

// Messenger is the slice of a chat platform the relay needs.
type Messenger interface {
	// SendText posts text to chatID, optionally as a reply to replyTo (0 for
	// none), and returns the new message id.
	SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendTyping(ctx context.Context, chatID int64) error
}

// Fixed user-facing texts.
const (
	ProcessingText   = "🤖 AI is thinking..."
	ApologyText      = "❌ Sorry, something went wrong while generating a reply. Please try again later."
	UnauthorizedText = "❌ Sorry, you are not allowed to use this bot."
	StatusFailedText = "❌ Unable to check service status."

	HelpText = `🤖 Available commands:
/start - get started
/help - show this message
/status - check service status

💬 Send any other message and the AI will answer it.`
)
