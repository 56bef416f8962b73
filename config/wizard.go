package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(configPath string) (*Config, error) {
	fmt.Println("Welcome to botgo! Let's configure your bot.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Listen address.
	listenPrompt := promptui.Prompt{
		Label:    "Listen address for the webhook server",
		Default:  defaults.ListenAddr,
		Validate: validateListenAddr,
	}
	listenAddr, err := listenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}

	// 2. Log level.
	levelPrompt := promptui.Select{
		Label: "Select log level",
		Items: logLevels,
	}
	_, logLevel, err := levelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log level selection: %w", err)
	}

	// 3. Status message shown in the messenger's bot menu.
	statusPrompt := promptui.Prompt{
		Label:   "Status message (leave blank for none)",
		Default: "",
	}
	statusMessage, err := statusPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("status message: %w", err)
	}

	// 4. Accounts, one per messenger server the bot is registered on.
	var accounts []AccountConfig
	for {
		account, err := promptAccount(len(accounts) + 1)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)

		morePrompt := promptui.Select{
			Label: "Add another account",
			Items: []string{"no", "yes"},
		}
		_, more, err := morePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("account continuation: %w", err)
		}
		if more == "no" {
			break
		}
	}

	cfg := &Config{
		ListenAddr:    listenAddr,
		LogLevel:      logLevel,
		StatusMessage: statusMessage,
		Accounts:      accounts,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// promptAccount collects one account's identity fields.
func promptAccount(n int) (AccountConfig, error) {
	fmt.Printf("\nAccount %d\n", n)

	botIDPrompt := promptui.Prompt{
		Label:    "Bot ID (UUID issued by the server admin)",
		Validate: validateBotID,
	}
	botID, err := botIDPrompt.Run()
	if err != nil {
		return AccountConfig{}, fmt.Errorf("bot id: %w", err)
	}

	hostPrompt := promptui.Prompt{
		Label:    "Server host (e.g. cts.example.com)",
		Validate: validateNonEmpty("host"),
	}
	host, err := hostPrompt.Run()
	if err != nil {
		return AccountConfig{}, fmt.Errorf("host: %w", err)
	}

	secretPrompt := promptui.Prompt{
		Label:    "Secret key",
		Mask:     '*',
		Validate: validateNonEmpty("secret key"),
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return AccountConfig{}, fmt.Errorf("secret key: %w", err)
	}

	return AccountConfig{
		BotID:     strings.TrimSpace(botID),
		Host:      strings.TrimSpace(host),
		SecretKey: secret,
	}, nil
}

func validateBotID(input string) error {
	if _, err := uuid.Parse(strings.TrimSpace(input)); err != nil {
		return fmt.Errorf("not a valid UUID")
	}
	return nil
}

func validateListenAddr(input string) error {
	if !strings.Contains(input, ":") {
		return fmt.Errorf("expected host:port or :port")
	}
	return nil
}

func validateNonEmpty(field string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
