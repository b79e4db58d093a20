package relay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/bedrock-relay/internal/backend"
	"github.com/ziadkadry99/bedrock-relay/internal/metrics"
)

// DefaultModel is the model selector sent with every turn.
const DefaultModel = "claude-v3.5-haiku"

// Session is the two-call protocol a turn runs against. *backend.Session
// implements it.
type Session interface {
	PostMessage(ctx context.Context, req backend.PostMessageRequest) (*backend.PostMessageResponse, error)
	GetConversation(ctx context.Context, conversationID string) (*backend.Conversation, error)
	Close() error
}

// Opener acquires a fresh Session for one turn.
type Opener func() Session

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Outcome is the result of a single poll attempt.
type Outcome string

const (
	OutcomeNoMatch        Outcome = "no_match"
	OutcomeMatched        Outcome = "matched"
	OutcomeTransientError Outcome = "transient_error"
)

// PollAttempt describes one snapshot fetch of the poll loop.
type PollAttempt struct {
	Index   int
	Delay   time.Duration
	Outcome Outcome
	Err     error
}

// ChatTurn is one user message on its way through the backend.
type ChatTurn struct {
	TurnID         string
	ConversationID string
	UserMessageID  string
	RequestText    string
}

// Coordinator submits chat turns and polls the backend until the matching
// assistant reply shows up.
type Coordinator struct {
	open    Opener
	model   string
	sleep   Sleeper
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithModel overrides the model selector.
func WithModel(model string) Option {
	return func(c *Coordinator) {
		if model != "" {
			c.model = model
		}
	}
}

// WithSleeper replaces the wait used between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Coordinator) { c.sleep = s }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = l.With().Str("component", "relay").Logger() }
}

// WithMetrics records poll attempts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator creates a Coordinator that opens one session per turn.
func NewCoordinator(open Opener, opts ...Option) *Coordinator {
	c := &Coordinator{
		open:   open,
		model:  DefaultModel,
		sleep:  sleepContext,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitAndWait sends text as userID's next turn and blocks until the
// assistant reply is available. The submit call is made exactly once.
// Errors are *backend.TransportError, *backend.ProtocolError,
// *backend.BackendError or backend.ErrTimeout, possibly wrapped, or the
// context error if ctx ends first.
func (c *Coordinator) SubmitAndWait(ctx context.Context, text string, userID int64) (string, error) {
	sess := c.open()
	defer func() {
		if err := sess.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("closing backend session")
		}
	}()

	turn := ChatTurn{
		TurnID:         newTurnID(),
		ConversationID: ConversationID(userID),
		RequestText:    text,
	}

	c.logger.Info().
		Str("turn_id", turn.TurnID).
		Int64("user_id", userID).
		Str("conversation_id", turn.ConversationID).
		Int("message_length", len(text)).
		Msg("submitting turn")

	resp, err := sess.PostMessage(ctx, backend.NewTextRequest(turn.ConversationID, text, c.model))
	if err != nil {
		return "", err
	}
	if resp.MessageID == "" {
		return "", &backend.ProtocolError{Op: "post message", Reason: "response has no messageId"}
	}
	turn.UserMessageID = resp.MessageID

	c.logger.Debug().
		Str("turn_id", turn.TurnID).
		Str("conversation_id", turn.ConversationID).
		Str("message_id", turn.UserMessageID).
		Msg("turn accepted, polling for reply")

	return c.poll(ctx, sess, turn)
}

func (c *Coordinator) poll(ctx context.Context, sess Session, turn ChatTurn) (string, error) {
	log := c.logger.With().
		Str("turn_id", turn.TurnID).
		Str("conversation_id", turn.ConversationID).
		Str("message_id", turn.UserMessageID).
		Logger()

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		delay := DelayBefore(attempt)
		if delay > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		if attempt < 5 || attempt%10 == 0 {
			log.Info().Int("attempt", attempt+1).Int("max_attempts", MaxAttempts).Dur("delay", delay).Msg("polling for reply")
		}

		reply, found, err := c.check(ctx, sess, turn)
		pa := PollAttempt{Index: attempt, Delay: delay, Err: err}
		switch {
		case err != nil:
			pa.Outcome = OutcomeTransientError
		case found:
			pa.Outcome = OutcomeMatched
		default:
			pa.Outcome = OutcomeNoMatch
		}
		c.record(log, pa)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			if attempt == MaxAttempts-1 {
				return "", errors.Wrapf(err, "poll attempt %d", attempt+1)
			}
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("poll attempt failed")
			if err := c.sleep(ctx, errorBackoff); err != nil {
				return "", err
			}
			continue
		}

		if found {
			log.Info().Int("attempts", attempt+1).Str("reply_id", reply.MessageID).Msg("reply received")
			c.metrics.ObserveAttemptsPerTurn(attempt + 1)
			return reply.Text, nil
		}
	}

	log.Error().Int("attempts", MaxAttempts).Msg("no reply within poll budget")
	c.metrics.ObserveAttemptsPerTurn(MaxAttempts)
	return "", errors.Wrapf(backend.ErrTimeout, "no reply after %d attempts", MaxAttempts)
}

func (c *Coordinator) check(ctx context.Context, sess Session, turn ChatTurn) (Reply, bool, error) {
	conv, err := sess.GetConversation(ctx, turn.ConversationID)
	if err != nil {
		return Reply{}, false, err
	}
	reply, ok := FindReply(conv.Messages, turn.UserMessageID)
	return reply, ok, nil
}

func (c *Coordinator) record(log zerolog.Logger, pa PollAttempt) {
	c.metrics.ObservePollAttempt(string(pa.Outcome))
	log.Debug().
		Int("attempt", pa.Index+1).
		Dur("delay", pa.Delay).
		Str("outcome", string(pa.Outcome)).
		Msg("poll attempt")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
