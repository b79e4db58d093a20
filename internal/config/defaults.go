package config

const (
	// DefaultPath is where the config file is looked up when --config is not given.
	DefaultPath = ".relay.yml"

	DefaultModel          = "claude-v3.5-haiku"
	DefaultTimeoutSeconds = 30
	DefaultMaxConcurrency = 8
	DefaultLogLevel       = "INFO"
	DefaultOpsListen      = ":9090"
)

// KnownModels are the backend model ids offered by the init wizard.
var KnownModels = []string{
	"claude-v3.5-haiku",
	"claude-v3.5-sonnet",
	"claude-v3.7-sonnet",
	"claude-v3-haiku",
	"claude-v3-opus",
}

// DefaultConfig returns a Config with sensible defaults. Credentials and the
// backend URL have no default.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			MaxConcurrency: DefaultMaxConcurrency,
		},
		Backend: BackendConfig{
			Timeout: DefaultTimeoutSeconds,
			Model:   DefaultModel,
		},
		LogLevel: DefaultLogLevel,
		Ops: OpsConfig{
			Listen: DefaultOpsListen,
		},
	}
}
