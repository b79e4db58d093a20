package bots

import (
	"context"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/bedrock-relay/internal/backend"
	"github.com/ziadkadry99/bedrock-relay/internal/metrics"
	"github.com/ziadkadry99/bedrock-relay/internal/progress"
)

// MaxMessageLength is Telegram's limit for a single text message, counted
// in UTF-16 code units.
const MaxMessageLength = 4096

// notifyTimeout bounds the follow-up sends after a turn finishes. They run
// on a context detached from the turn.
const notifyTimeout = 10 * time.Second

// Relay obtains the assistant's reply for one user message.
type Relay interface {
	SubmitAndWait(ctx context.Context, text string, userID int64) (string, error)
}

// Processor runs one chat turn: status message, typing cue, relay call and
// delivery of the reply or the apology.
type Processor struct {
	messenger Messenger
	relay     Relay
	signaler  *progress.Signaler
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithMetrics records turn outcomes on m.
func WithMetrics(m *metrics.Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

// NewProcessor creates a Processor. The signaler should send through the
// same messenger.
func NewProcessor(messenger Messenger, relay Relay, signaler *progress.Signaler, opts ...ProcessorOption) *Processor {
	p := &Processor{
		messenger: messenger,
		relay:     relay,
		signaler:  signaler,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleMessage relays msg to the backend and reports the outcome in the
// chat. Backend failures are answered with a fixed apology and logged; the
// returned error only reports failures to talk to the chat itself.
func (p *Processor) HandleMessage(ctx context.Context, msg IncomingMessage) error {
	log := p.logger.With().Int64("user_id", msg.UserID).Int64("chat_id", msg.ChatID).Logger()

	start := time.Now()
	p.metrics.TurnStarted()

	statusID, err := p.messenger.SendText(ctx, msg.ChatID, ProcessingText, msg.MessageID)
	if err != nil {
		log.Warn().Err(err).Msg("sending status message")
		statusID = 0
	}

	var reply string
	err = p.signaler.During(ctx, msg.ChatID, func(ctx context.Context) error {
		var relayErr error
		reply, relayErr = p.relay.SubmitAndWait(ctx, msg.Text, msg.UserID)
		return relayErr
	})
	elapsed := time.Since(start)

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err != nil {
		kind := backend.Kind(err)
		p.metrics.ObserveTurn(kind, elapsed)
		log.Error().Err(err).Str("kind", kind).Dur("elapsed", elapsed).Msg("relay failed")
		return p.apologize(notifyCtx, msg, statusID)
	}

	if statusID != 0 {
		if err := p.messenger.DeleteMessage(notifyCtx, msg.ChatID, statusID); err != nil {
			log.Warn().Err(err).Msg("deleting status message")
		}
	}

	replyTo := msg.MessageID
	for i, chunk := range SplitMessage(reply, MaxMessageLength) {
		if _, err := p.messenger.SendText(notifyCtx, msg.ChatID, chunk, replyTo); err != nil {
			p.metrics.ObserveTurn("delivery_failed", elapsed)
			log.Error().Err(err).Int("chunk", i).Msg("sending reply")
			return p.apologize(notifyCtx, msg, 0)
		}
		replyTo = 0
	}

	p.metrics.ObserveTurn("ok", elapsed)
	log.Info().Dur("elapsed", elapsed).Int("length", len(reply)).Msg("reply sent")
	return nil
}

func (p *Processor) apologize(ctx context.Context, msg IncomingMessage, statusID int) error {
	if statusID != 0 {
		err := p.messenger.EditText(ctx, msg.ChatID, statusID, ApologyText)
		if err == nil {
			return nil
		}
		p.logger.Warn().Err(err).Msg("editing status message")
	}
	if _, err := p.messenger.SendText(ctx, msg.ChatID, ApologyText, msg.MessageID); err != nil {
		return errors.Wrap(err, "sending apology")
	}
	return nil
}

// SplitMessage cuts text into chunks of at most limit UTF-16 code units,
// preferring to break after a newline.
func SplitMessage(text string, limit int) []string {
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > 0 {
		cut, units, nl := 0, 0, -1
		for ; cut < len(runes); cut++ {
			n := runeUnits(runes[cut])
			if units+n > limit {
				break
			}
			if runes[cut] == '\n' {
				nl = cut
			}
			units += n
		}
		if cut == len(runes) {
			chunks = append(chunks, string(runes))
			break
		}
		if nl > 0 {
			cut = nl + 1
		}
		if cut == 0 {
			cut = 1
		}
		if chunk := strings.TrimRight(string(runes[:cut]), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// runeUnits is the UTF-16 length of r. Invalid runes are sent as U+FFFD.
func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
