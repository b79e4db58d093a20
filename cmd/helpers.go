package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/bedrock-relay/internal/backend"
	"github.com/ziadkadry99/bedrock-relay/internal/config"
	"github.com/ziadkadry99/bedrock-relay/internal/logger"
	"github.com/ziadkadry99/bedrock-relay/internal/metrics"
	"github.com/ziadkadry99/bedrock-relay/internal/relay"
)

// loadConfig loads the config, applies --verbose and validates it. The
// Telegram section is only checked when withBot is set.
func loadConfig(withBot bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	if verbose {
		cfg.LogLevel = "DEBUG"
	}
	validate := cfg.ValidateBackend
	if withBot {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config (run `bedrock-relay init` or set TELEGRAM_BOT_TOKEN and BEDROCK_CHAT_API_URL)")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
}

func newBackendClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(cfg.Backend.URL,
		backend.WithAPIToken(cfg.Backend.APIToken),
		backend.WithTimeout(cfg.Backend.RequestTimeout()),
	)
}

// newCoordinator opens a fresh backend session for every turn.
func newCoordinator(cfg *config.Config, client *backend.Client, log zerolog.Logger, m *metrics.Metrics) *relay.Coordinator {
	return relay.NewCoordinator(
		func() relay.Session { return client.NewSession() },
		relay.WithModel(cfg.Backend.Model),
		relay.WithLogger(log),
		relay.WithMetrics(m),
	)
}
