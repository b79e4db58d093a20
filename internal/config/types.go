package config

import "time"

// Config is the top-level relay configuration, corresponding to .relay.yml.
type Config struct {
	Telegram        TelegramConfig `yaml:"telegram" koanf:"telegram"`
	Backend         BackendConfig  `yaml:"backend" koanf:"backend"`
	AuthorizedUsers string         `yaml:"authorized_users" koanf:"authorized_users"`
	LogLevel        string         `yaml:"log_level" koanf:"log_level"`
	LogPretty       bool           `yaml:"log_pretty" koanf:"log_pretty"`
	Ops             OpsConfig      `yaml:"ops" koanf:"ops"`
}

// TelegramConfig holds bot settings.
type TelegramConfig struct {
	BotToken       string `yaml:"bot_token" koanf:"bot_token"`
	MaxConcurrency int    `yaml:"max_concurrency" koanf:"max_concurrency"`
}

// BackendConfig points at the conversational backend.
type BackendConfig struct {
	URL      string `yaml:"url" koanf:"url"`
	APIToken string `yaml:"api_token,omitempty" koanf:"api_token"`
	Timeout  int    `yaml:"timeout" koanf:"timeout"` // seconds, per HTTP request
	Model    string `yaml:"model" koanf:"model"`
}

// OpsConfig controls the operations HTTP server. An empty Listen disables it.
type OpsConfig struct {
	Listen      string   `yaml:"listen" koanf:"listen"`
	CORSOrigins []string `yaml:"cors_origins,omitempty" koanf:"cors_origins"`
}

// RequestTimeout returns the backend timeout as a duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}
