package bots

import (
	"context"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// pollTimeout is the long-polling timeout in seconds passed to getUpdates.
const pollTimeout = 30

// telegramAPI is the part of *telego.Bot used to talk to chats.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
	SendChatAction(ctx context.Context, params *telego.SendChatActionParams) error
}

// Telegram is the Messenger for the Telegram Bot API. Updates are received
// by long polling.
type Telegram struct {
	bot            *telego.Bot
	api            telegramAPI
	maxConcurrency int
	logger         zerolog.Logger
}

// NewTelegram creates a bot client for token. At most maxConcurrency
// updates are handled at the same time.
func NewTelegram(token string, maxConcurrency int, logger zerolog.Logger) (*Telegram, error) {
	logger = logger.With().Str("component", "telegram").Logger()

	bot, err := telego.NewBot(token, telego.WithLogger(telegoLogger{logger: logger}))
	if err != nil {
		return nil, errors.Wrap(err, "creating telegram bot")
	}

	t := newTelegram(bot, maxConcurrency, logger)
	t.bot = bot
	return t, nil
}

func newTelegram(api telegramAPI, maxConcurrency int, logger zerolog.Logger) *Telegram {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Telegram{api: api, maxConcurrency: maxConcurrency, logger: logger}
}

// Run polls for updates and hands text messages to gw until ctx is
// cancelled, then waits for in-flight messages to finish.
func (t *Telegram) Run(ctx context.Context, gw *Gateway) error {
	if t.bot == nil {
		return errors.New("telegram bot not initialised")
	}

	updates, err := t.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        pollTimeout,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return errors.Wrap(err, "starting long polling")
	}

	t.logger.Info().Int("max_concurrency", t.maxConcurrency).Msg("polling for updates")
	return t.dispatch(ctx, updates, gw)
}

func (t *Telegram) dispatch(ctx context.Context, updates <-chan telego.Update, gw *Gateway) error {
	var g errgroup.Group
	g.SetLimit(t.maxConcurrency)

	for update := range updates {
		msg, ok := incomingFromUpdate(update)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gw.Process(ctx, msg); err != nil {
				t.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("handling message")
			}
			return nil
		})
	}

	err := g.Wait()
	t.logger.Info().Msg("polling stopped")
	return err
}

// incomingFromUpdate converts a text message update. Other update kinds and
// non-text messages are skipped.
func incomingFromUpdate(update telego.Update) (IncomingMessage, bool) {
	m := update.Message
	if m == nil || m.Text == "" || m.From == nil {
		return IncomingMessage{}, false
	}
	return IncomingMessage{
		Platform:  PlatformTelegram,
		ChatID:    m.Chat.ID,
		UserID:    m.From.ID,
		UserName:  m.From.FirstName,
		MessageID: m.MessageID,
		Text:      m.Text,
	}, true
}

// SendText implements Messenger.
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error) {
	params := tu.Message(tu.ID(chatID), text)
	if replyTo != 0 {
		params = params.WithReplyParameters(&telego.ReplyParameters{
			MessageID:                replyTo,
			AllowSendingWithoutReply: true,
		})
	}
	sent, err := t.api.SendMessage(ctx, params)
	if err != nil {
		return 0, errors.Wrap(err, "send message")
	}
	return sent.MessageID, nil
}

// EditText implements Messenger.
func (t *Telegram) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := t.api.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
		Text:      text,
	})
	return errors.Wrap(err, "edit message")
}

// DeleteMessage implements Messenger.
func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	err := t.api.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
	return errors.Wrap(err, "delete message")
}

// SendTyping implements Messenger and progress.Sender.
func (t *Telegram) SendTyping(ctx context.Context, chatID int64) error {
	err := t.api.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: tu.ID(chatID),
		Action: telego.ChatActionTyping,
	})
	return errors.Wrap(err, "send chat action")
}

// telegoLogger routes telego's own logging through zerolog.
type telegoLogger struct {
	logger zerolog.Logger
}

func (l telegoLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l telegoLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}
