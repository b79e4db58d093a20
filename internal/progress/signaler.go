package progress

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/bedrock-relay/internal/metrics"
)

// DefaultInterval is how often the typing cue is refreshed. Telegram shows
// the indicator for about five seconds.
const DefaultInterval = 4 * time.Second

// Sender emits one "still working" cue to a chat.
type Sender interface {
	SendTyping(ctx context.Context, chatID int64) error
}

// Signaler repeatedly emits the typing cue while work is in progress.
type Signaler struct {
	sender   Sender
	interval time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Signaler.
type Option func(*Signaler)

// WithInterval overrides the refresh interval.
func WithInterval(d time.Duration) Option {
	return func(s *Signaler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Signaler) { s.logger = l.With().Str("component", "signaler").Logger() }
}

// WithMetrics counts sends on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Signaler) { s.metrics = m }
}

// NewSignaler creates a Signaler that sends through sender.
func NewSignaler(sender Sender, opts ...Option) *Signaler {
	s := &Signaler{
		sender:   sender,
		interval: DefaultInterval,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sends the typing cue to chatID immediately and then once per
// interval until ctx is cancelled. Cancellation is the normal way to stop
// it and yields a nil error. Failed sends are logged and skipped.
func (s *Signaler) Run(ctx context.Context, chatID int64) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		err := s.sender.SendTyping(ctx, chatID)
		if ctx.Err() != nil {
			return nil
		}
		s.metrics.ObserveTyping(err)
		if err != nil {
			s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("sending typing indicator")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// During runs work while the typing cue is shown in chatID. The signaler
// is started before work and has fully stopped by the time During returns,
// whether work succeeded or not.
func (s *Signaler) During(ctx context.Context, chatID int64, work func(ctx context.Context) error) error {
	signalCtx, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	g.Go(func() error { return s.Run(signalCtx, chatID) })

	err := work(ctx)

	stop()
	_ = g.Wait() // Run reports send failures itself and returns nil
	return err
}
