package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Telegram.BotToken = "123456:ABCDEFGHIJ"
	cfg.Backend.URL = "https://chat.example.com/api"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend.Model != "claude-v3.5-haiku" {
		t.Errorf("expected default model %q, got %q", "claude-v3.5-haiku", cfg.Backend.Model)
	}
	if cfg.Backend.Timeout != 30 {
		t.Errorf("expected default timeout 30, got %d", cfg.Backend.Timeout)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("expected default log_level INFO, got %q", cfg.LogLevel)
	}
	if cfg.Telegram.MaxConcurrency != 8 {
		t.Errorf("expected default max_concurrency 8, got %d", cfg.Telegram.MaxConcurrency)
	}
	if cfg.Ops.Listen != ":9090" {
		t.Errorf("expected default ops.listen :9090, got %q", cfg.Ops.Listen)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.relay.yml")

	original := validConfig()
	original.Backend.APIToken = "secret"
	original.Backend.Timeout = 45
	original.Backend.Model = "claude-v3-opus"
	original.AuthorizedUsers = "1, 2"
	original.Ops.CORSOrigins = []string{"https://a.example", "https://b.example"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Telegram.BotToken != original.Telegram.BotToken {
		t.Errorf("bot_token: got %q, want %q", loaded.Telegram.BotToken, original.Telegram.BotToken)
	}
	if loaded.Backend != (BackendConfig{
		URL: original.Backend.URL, APIToken: "secret", Timeout: 45, Model: "claude-v3-opus",
	}) {
		t.Errorf("backend: got %+v", loaded.Backend)
	}
	if loaded.AuthorizedUsers != "1, 2" {
		t.Errorf("authorized_users: got %q", loaded.AuthorizedUsers)
	}
	if len(loaded.Ops.CORSOrigins) != 2 || loaded.Ops.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors_origins: got %v", loaded.Ops.CORSOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Backend.Model != DefaultModel {
		t.Errorf("expected default model, got %q", cfg.Backend.Model)
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:from-the-env")
	t.Setenv("BEDROCK_CHAT_API_URL", "http://localhost:8000")
	t.Setenv("BEDROCK_CHAT_API_TOKEN", "env-token")
	t.Setenv("BEDROCK_CHAT_TIMEOUT", "12")
	t.Setenv("AUTHORIZED_USERS", "10,20")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.BotToken != "999:from-the-env" {
		t.Errorf("bot_token: got %q", cfg.Telegram.BotToken)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("url: got %q", cfg.Backend.URL)
	}
	if cfg.Backend.APIToken != "env-token" {
		t.Errorf("api_token: got %q", cfg.Backend.APIToken)
	}
	if cfg.Backend.Timeout != 12 {
		t.Errorf("timeout: got %d", cfg.Backend.Timeout)
	}
	if cfg.AuthorizedUsers != "10,20" {
		t.Errorf("authorized_users: got %q", cfg.AuthorizedUsers)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("log_level should be upper-cased, got %q", cfg.LogLevel)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := validConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("RELAY_BACKEND__MODEL", "claude-v3.5-sonnet")
	t.Setenv("RELAY_OPS__LISTEN", "")
	t.Setenv("RELAY_OPS__CORS_ORIGINS", "https://x.example, https://y.example")
	t.Setenv("RELAY_LOG_PRETTY", "true")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Backend.Model != "claude-v3.5-sonnet" {
		t.Errorf("env override failed: got %q", loaded.Backend.Model)
	}
	if loaded.Ops.Listen != "" {
		t.Errorf("ops.listen should be disabled by env, got %q", loaded.Ops.Listen)
	}
	if len(loaded.Ops.CORSOrigins) != 2 || loaded.Ops.CORSOrigins[0] != "https://x.example" {
		t.Errorf("cors_origins: got %v", loaded.Ops.CORSOrigins)
	}
	if !loaded.LogPretty {
		t.Error("log_pretty should be true")
	}
	if loaded.Backend.URL != cfg.Backend.URL {
		t.Errorf("file value lost: got %q", loaded.Backend.URL)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("backend: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidateValid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("config should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"short token", func(c *Config) { c.Telegram.BotToken = "123" }},
		{"zero concurrency", func(c *Config) { c.Telegram.MaxConcurrency = 0 }},
		{"missing url", func(c *Config) { c.Backend.URL = "" }},
		{"ftp url", func(c *Config) { c.Backend.URL = "ftp://chat.example.com" }},
		{"url without host", func(c *Config) { c.Backend.URL = "https://" }},
		{"zero timeout", func(c *Config) { c.Backend.Timeout = 0 }},
		{"empty model", func(c *Config) { c.Backend.Model = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "VERBOSE" }},
		{"empty log level", func(c *Config) { c.LogLevel = "" }},
		{"bad user id", func(c *Config) { c.AuthorizedUsers = "12,abc" }},
	}
	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidateBackendIgnoresTelegram(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.BotToken = ""
	if err := cfg.ValidateBackend(); err != nil {
		t.Errorf("ValidateBackend should not need a bot token, got: %v", err)
	}
	cfg.Backend.URL = "not a url"
	if err := cfg.ValidateBackend(); err == nil {
		t.Error("expected error for bad backend url")
	}
}

func TestValidateAcceptsLevelAliases(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARNING", "WARN", "ERROR", "CRITICAL"} {
		cfg := validConfig()
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("level %s: unexpected error %v", level, err)
		}
	}
}

func TestAuthorizedUserIDs(t *testing.T) {
	tests := []struct {
		input string
		want  []int64
	}{
		{"", nil},
		{"42", []int64{42}},
		{" 1 , 2 ,3 ", []int64{1, 2, 3}},
		{"5,,6,", []int64{5, 6}},
	}
	for _, tt := range tests {
		got, err := (&Config{AuthorizedUsers: tt.input}).AuthorizedUserIDs()
		if err != nil {
			t.Errorf("AuthorizedUserIDs(%q) error: %v", tt.input, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("AuthorizedUserIDs(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("AuthorizedUserIDs(%q)[%d] = %d, want %d", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestRequestTimeout(t *testing.T) {
	b := BackendConfig{Timeout: 30}
	if got := b.RequestTimeout().Seconds(); got != 30 {
		t.Errorf("RequestTimeout = %vs, want 30s", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
