// Package config loads framework configuration from a YAML file with
// environment variable overrides (BOTGO_*).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/convexim/botgo/credstore"
)

// AccountConfig declares the bot's identity on one messenger server.
type AccountConfig struct {
	BotID     string `yaml:"bot_id" koanf:"bot_id"`
	Host      string `yaml:"host" koanf:"host"`
	SecretKey string `yaml:"secret_key" koanf:"secret_key"`
}

// Config is the top-level bot configuration, corresponding to botgo.yml.
type Config struct {
	ListenAddr    string          `yaml:"listen_addr" koanf:"listen_addr"`
	LogLevel      string          `yaml:"log_level" koanf:"log_level"`
	TaskLimit     int             `yaml:"task_limit" koanf:"task_limit"`
	StatusMessage string          `yaml:"status_message" koanf:"status_message"`
	Accounts      []AccountConfig `yaml:"accounts" koanf:"accounts"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: ":8000",
		LogLevel:   "info",
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BOTGO_LISTEN_ADDR -> listen_addr, etc.).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("BOTGO_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "BOTGO_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	for i, a := range c.Accounts {
		if _, err := uuid.Parse(a.BotID); err != nil {
			return fmt.Errorf("accounts[%d]: invalid bot_id %q: %w", i, a.BotID, err)
		}
		if a.Host == "" {
			return fmt.Errorf("accounts[%d]: host is required", i)
		}
		if a.SecretKey == "" {
			return fmt.Errorf("accounts[%d]: secret_key is required", i)
		}
	}
	if c.TaskLimit < 0 {
		return fmt.Errorf("task_limit must be non-negative")
	}
	return nil
}

// CredentialAccounts converts the declared accounts for the credential
// store. Call Validate first.
func (c *Config) CredentialAccounts() ([]credstore.Account, error) {
	accounts := make([]credstore.Account, 0, len(c.Accounts))
	for i, a := range c.Accounts {
		botID, err := uuid.Parse(a.BotID)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d]: invalid bot_id %q: %w", i, a.BotID, err)
		}
		accounts = append(accounts, credstore.Account{
			BotID:     botID,
			Host:      a.Host,
			SecretKey: a.SecretKey,
		})
	}
	return accounts, nil
}
