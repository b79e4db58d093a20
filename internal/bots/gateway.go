package bots

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MessageHandler processes a chat message that passed the gateway checks.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg IncomingMessage) error
}

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) bool
}

// Gateway is the platform-agnostic entry point: it answers commands itself
// and forwards authorized chat text to the handler.
type Gateway struct {
	messenger Messenger
	handler   MessageHandler
	health    HealthChecker
	allowed   map[int64]struct{}
	logger    zerolog.Logger
}

// NewGateway creates a Gateway. An empty allowlist lets every user chat.
func NewGateway(messenger Messenger, handler MessageHandler, health HealthChecker, allowed []int64, logger zerolog.Logger) *Gateway {
	set := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	return &Gateway{
		messenger: messenger,
		handler:   handler,
		health:    health,
		allowed:   set,
		logger:    logger.With().Str("component", "gateway").Logger(),
	}
}

// Authorized reports whether userID may chat with the bot.
func (g *Gateway) Authorized(userID int64) bool {
	if len(g.allowed) == 0 {
		return true
	}
	_, ok := g.allowed[userID]
	return ok
}

// Process routes an incoming message. Commands are answered directly and
// are open to everyone; anything else goes to the handler if the sender is
// authorized. Blank messages and unknown commands are ignored.
func (g *Gateway) Process(ctx context.Context, msg IncomingMessage) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	log := g.logger.With().Int64("user_id", msg.UserID).Int64("chat_id", msg.ChatID).Logger()

	if cmd, ok := parseCommand(text); ok {
		switch cmd {
		case "start":
			log.Info().Msg("sending welcome")
			return g.reply(ctx, msg, welcomeText(msg.UserName))
		case "help":
			log.Info().Msg("sending help")
			return g.reply(ctx, msg, HelpText)
		case "status":
			log.Info().Msg("sending status")
			return g.reply(ctx, msg, g.statusText(ctx))
		default:
			log.Debug().Str("command", cmd).Msg("ignoring unknown command")
			return nil
		}
	}

	if !g.Authorized(msg.UserID) {
		log.Warn().Msg("rejecting unauthorized user")
		return g.reply(ctx, msg, UnauthorizedText)
	}

	log.Info().Str("user", msg.UserName).Int("length", len(text)).Msg("received message")
	msg.Text = text
	return g.handler.HandleMessage(ctx, msg)
}

func (g *Gateway) reply(ctx context.Context, msg IncomingMessage, text string) error {
	if _, err := g.messenger.SendText(ctx, msg.ChatID, text, msg.MessageID); err != nil {
		return errors.Wrap(err, "sending reply")
	}
	return nil
}

func (g *Gateway) statusText(ctx context.Context) string {
	if g.health == nil {
		return StatusFailedText
	}
	backendState := "❌ unavailable"
	if g.health.Health(ctx) {
		backendState = "✅ OK"
	}
	return fmt.Sprintf("🟢 Bot: running\n🧠 AI backend: %s", backendState)
}

func welcomeText(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("👋 Hello %s!\n\nI relay your messages to the Bedrock chat backend.\n\nJust send me a message and I'll answer it with Claude.", name)
}

// parseCommand extracts the command name from "/cmd@botname args".
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word := strings.Fields(text)[0][1:]
	if at := strings.IndexByte(word, '@'); at >= 0 {
		word = word[:at]
	}
	return strings.ToLower(word), true
}
