package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/bedrock-relay/internal/logger"
)

// EnvPrefix marks generic overrides: RELAY_BACKEND__MODEL -> backend.model.
const EnvPrefix = "RELAY_"

// envAliases are the variable names the bot has always been configured with.
var envAliases = map[string]string{
	"TELEGRAM_BOT_TOKEN":     "telegram.bot_token",
	"BEDROCK_CHAT_API_URL":   "backend.url",
	"BEDROCK_CHAT_API_TOKEN": "backend.api_token",
	"BEDROCK_CHAT_TIMEOUT":   "backend.timeout",
	"AUTHORIZED_USERS":       "authorized_users",
	"LOG_LEVEL":              "log_level",
}

// Load reads configuration from the given YAML file, then overlays
// environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "accessing config %s", path)
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "loading env overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

// envKey maps an environment variable to a config key. Returning an empty
// key makes koanf skip the variable.
func envKey(name, value string) (string, interface{}) {
	if key, ok := envAliases[name]; ok {
		return key, value
	}
	if !strings.HasPrefix(name, EnvPrefix) {
		return "", nil
	}

	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "ops.cors_origins" {
		return key, splitAndTrim(value)
	}
	return key, value
}

// Save writes the configuration to the given YAML file path, readable by
// the owner only.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "writing config to %s", path)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if len(c.Telegram.BotToken) < 10 {
		return errors.New("telegram.bot_token is missing or too short")
	}
	if c.Telegram.MaxConcurrency <= 0 {
		return errors.New("telegram.max_concurrency must be positive")
	}
	return c.ValidateBackend()
}

// ValidateBackend checks everything except the Telegram section, which the
// terminal commands do not need.
func (c *Config) ValidateBackend() error {
	if err := ValidateURL(c.Backend.URL); err != nil {
		return errors.Wrap(err, "backend.url")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	if c.Backend.Model == "" {
		return errors.New("backend.model is required")
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return errors.Errorf("invalid log_level %q: must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL", c.LogLevel)
	}

	if _, err := c.AuthorizedUserIDs(); err != nil {
		return err
	}

	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "parsing %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return errors.Errorf("%q has no host", raw)
	}
	return nil
}

// AuthorizedUserIDs parses the comma-separated allowlist. An empty list
// means every user is allowed.
func (c *Config) AuthorizedUserIDs() ([]int64, error) {
	var ids []int64
	for _, part := range splitAndTrim(c.AuthorizedUsers) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid user id %q in authorized_users", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// splitAndTrim splits a comma-separated string, trims whitespace and drops
// empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
