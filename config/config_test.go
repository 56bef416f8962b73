package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "botgo.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9000"
log_level: debug
task_limit: 50
status_message: "Echo bot is working"
accounts:
  - bot_id: 24348246-6791-4ac0-9d86-b948cd6a0e46
    host: cts.example.com
    secret_key: secret
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9000" || cfg.LogLevel != "debug" || cfg.TaskLimit != 50 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.StatusMessage != "Echo bot is working" {
		t.Errorf("status_message = %q", cfg.StatusMessage)
	}
	if len(cfg.Accounts) != 1 || cfg.Accounts[0].Host != "cts.example.com" {
		t.Errorf("accounts = %+v", cfg.Accounts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	accounts, err := cfg.CredentialAccounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].SecretKey != "secret" {
		t.Errorf("credential accounts = %+v", accounts)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8000" || cfg.LogLevel != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, `listen_addr: ":9000"`)
	t.Setenv("BOTGO_LISTEN_ADDR", ":7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("listen_addr = %q, want env override", cfg.ListenAddr)
	}
}

func TestValidateRejectsBadAccounts(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no accounts", Config{}},
		{"bad bot id", Config{Accounts: []AccountConfig{{BotID: "nope", Host: "h", SecretKey: "s"}}}},
		{"missing host", Config{Accounts: []AccountConfig{{BotID: "24348246-6791-4ac0-9d86-b948cd6a0e46", SecretKey: "s"}}}},
		{"missing secret", Config{Accounts: []AccountConfig{{BotID: "24348246-6791-4ac0-9d86-b948cd6a0e46", Host: "h"}}}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yml")
	original := &Config{
		ListenAddr: ":8000",
		LogLevel:   "warn",
		Accounts: []AccountConfig{{
			BotID: "24348246-6791-4ac0-9d86-b948cd6a0e46", Host: "h", SecretKey: "s",
		}},
	}
	if err := original.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LogLevel != "warn" || len(loaded.Accounts) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
}
