package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestReadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
bot:
  token: "test-token"
  owner_id: 12345
panels:
  main:
    url: "https://panel.example.com"
    application_key: "app-key"
    client_key: "client-key"
  external:
    url: "https://other.example.com"
    client_key: "ext-client-key"
scrape:
  server_delay_seconds: 5
`)

	config, err := readConfigFile(path)
	if err != nil {
		t.Fatalf("readConfigFile failed: %v", err)
	}
	if config.Token != "test-token" || config.OwnerID != 12345 {
		t.Errorf("Bot section mismatch: %+v", config)
	}
	if config.MainPanel.URL != "https://panel.example.com" {
		t.Errorf("Main panel mismatch: %+v", config.MainPanel)
	}
	if !config.ExternalPanel.Configured() {
		t.Error("Expected external panel to count as configured")
	}
	if config.ServerDelay != 5*time.Second {
		t.Errorf("ServerDelay = %v, want 5s", config.ServerDelay)
	}
	// Untouched values fall back to defaults.
	if config.RequestTimeout != 35*time.Second {
		t.Errorf("RequestTimeout = %v, want the 35s default", config.RequestTimeout)
	}
	if config.DatabasePath != "bot.db" {
		t.Errorf("DatabasePath = %q, want bot.db", config.DatabasePath)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeConfigFile(t, `
bot:
  token: "file-token"
  owner_id: 1
panels:
  main:
    url: "https://panel.example.com"
    application_key: "app-key"
    client_key: "client-key"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("OWNER_TELEGRAM_ID", "777")

	config, err := readConfigFile(path)
	if err != nil {
		t.Fatalf("readConfigFile failed: %v", err)
	}
	if config.Token != "env-token" {
		t.Errorf("Token = %q, want the env override", config.Token)
	}
	if config.OwnerID != 777 {
		t.Errorf("OwnerID = %d, want 777", config.OwnerID)
	}
}

func TestMissingFileWithEnvOnly(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("OWNER_TELEGRAM_ID", "777")
	t.Setenv("PANEL_URL", "https://panel.example.com")
	t.Setenv("PANEL_APPLICATION_KEY", "app-key")
	t.Setenv("PANEL_CLIENT_KEY", "client-key")

	config, err := readConfigFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Expected env-only configuration to work: %v", err)
	}
	if config.MainPanel.URL != "https://panel.example.com" {
		t.Errorf("Main panel URL = %q", config.MainPanel.URL)
	}
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	cases := []struct {
		name   string
		config BotConfig
	}{
		{"no token", BotConfig{OwnerID: 1, MainPanel: PanelConfig{URL: "u", ApplicationKey: "a", ClientKey: "c"}}},
		{"no owner", BotConfig{Token: "t", MainPanel: PanelConfig{URL: "u", ApplicationKey: "a", ClientKey: "c"}}},
		{"partial panel", BotConfig{Token: "t", OwnerID: 1, MainPanel: PanelConfig{URL: "u", ApplicationKey: "a"}}},
	}
	for _, c := range cases {
		if err := c.config.validate(); err == nil {
			t.Errorf("%s: expected validation to fail", c.name)
		}
	}
}

func TestPanelConfigured(t *testing.T) {
	if (PanelConfig{}).Configured() {
		t.Error("Empty panel must not count as configured")
	}
	if (PanelConfig{URL: "u"}).Configured() {
		t.Error("URL without any key must not count as configured")
	}
	if !(PanelConfig{URL: "u", ClientKey: "c"}).Configured() {
		t.Error("URL plus client key should count as configured")
	}
}
