package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/ziadkadry99/bedrock-relay/internal/logger"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to bedrock-relay! Let's configure the bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Telegram bot token.
	tokenPrompt := promptui.Prompt{
		Label: "Telegram bot token",
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < 10 {
				return errors.New("token looks too short")
			}
			return nil
		},
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "bot token")
	}
	cfg.Telegram.BotToken = token

	// 2. Backend URL and token.
	urlPrompt := promptui.Prompt{
		Label:    "Backend API base URL",
		Validate: ValidateURL,
	}
	backendURL, err := urlPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "backend url")
	}
	cfg.Backend.URL = backendURL

	apiTokenPrompt := promptui.Prompt{
		Label: "Backend API token (leave blank if none)",
		Mask:  '*',
	}
	apiToken, err := apiTokenPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "api token")
	}
	cfg.Backend.APIToken = apiToken

	// 3. Model.
	modelPrompt := promptui.Select{
		Label: "Select backend model",
		Items: KnownModels,
	}
	_, model, err := modelPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "model selection")
	}
	cfg.Backend.Model = model

	// 4. Request timeout.
	timeoutPrompt := promptui.Prompt{
		Label:   "Backend request timeout in seconds",
		Default: strconv.Itoa(DefaultTimeoutSeconds),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return errors.New("enter a positive number of seconds")
			}
			return nil
		},
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "timeout")
	}
	cfg.Backend.Timeout, _ = strconv.Atoi(timeoutStr)

	// 5. Allowlist.
	usersPrompt := promptui.Prompt{
		Label: "Authorized Telegram user ids (comma-separated, blank allows everyone)",
		Validate: func(s string) error {
			_, err := (&Config{AuthorizedUsers: s}).AuthorizedUserIDs()
			return err
		},
	}
	users, err := usersPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "authorized users")
	}
	cfg.AuthorizedUsers = users

	// 6. Log level.
	levelPrompt := promptui.Select{
		Label: "Log level",
		Items: []string{"INFO", "DEBUG", "WARNING", "ERROR", "CRITICAL"},
	}
	_, level, err := levelPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	if _, err := logger.ParseLevel(level); err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	if err := cfg.Save(path); err != nil {
		return nil, errors.Wrap(err, "saving config")
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
