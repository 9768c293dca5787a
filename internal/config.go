package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type PanelConfig struct {
	URL            string `yaml:"url"`
	ApplicationKey string `yaml:"application_key"`
	ClientKey      string `yaml:"client_key"`
}

func (p PanelConfig) Configured() bool {
	return p.URL != "" && (p.ApplicationKey != "" || p.ClientKey != "")
}

type ConfigYAMLTopLevel struct {
	Bot    ConfigYAMLBot    `yaml:"bot"`
	Panels ConfigYAMLPanels `yaml:"panels"`
	Scrape ConfigYAMLScrape `yaml:"scrape"`
}

type ConfigYAMLBot struct {
	Token               string `yaml:"token"`
	OwnerID             int64  `yaml:"owner_id"`
	DatabasePath        string `yaml:"database_path"`
	BlacklistPath       string `yaml:"blacklist_path"`
	HealthServerEnabled bool   `yaml:"health_server_enabled"`
	HealthServerPort    int    `yaml:"health_server_port"`
}

type ConfigYAMLPanels struct {
	Main     PanelConfig `yaml:"main"`
	External PanelConfig `yaml:"external"`
}

type ConfigYAMLScrape struct {
	OutputDirExternal     string `yaml:"output_dir_external"`
	OutputDirSender       string `yaml:"output_dir_sender"`
	ServerDelaySeconds    int    `yaml:"server_delay_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// BotConfig is the resolved runtime configuration.
type BotConfig struct {
	Token               string
	OwnerID             int64
	DatabasePath        string
	BlacklistPath       string
	HealthServerEnabled bool
	HealthServerPort    int

	MainPanel     PanelConfig
	ExternalPanel PanelConfig

	OutputDirExternal string
	OutputDirSender   string
	ServerDelay       time.Duration
	RequestTimeout    time.Duration
}

func GetConfig() (BotConfig, error) {
	// First try to get config path from environment variable
	envConfigPath := os.Getenv("CONFIG_FILE_PATH")
	if envConfigPath != "" {
		return readConfigFile(envConfigPath)
	}

	execPath, err := os.Executable()
	if err != nil {
		return BotConfig{}, fmt.Errorf("failed to get executable path: %w", err)
	}

	execDir := filepath.Dir(execPath)
	configPath := filepath.Join(execDir, "config.yaml")
	return readConfigFile(configPath)
}

func readConfigFile(configPath string) (BotConfig, error) {
	var yamlConfig ConfigYAMLTopLevel

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
			return BotConfig{}, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return BotConfig{}, err
	}

	config := BotConfig{
		Token:               yamlConfig.Bot.Token,
		OwnerID:             yamlConfig.Bot.OwnerID,
		DatabasePath:        yamlConfig.Bot.DatabasePath,
		BlacklistPath:       yamlConfig.Bot.BlacklistPath,
		HealthServerEnabled: yamlConfig.Bot.HealthServerEnabled,
		HealthServerPort:    yamlConfig.Bot.HealthServerPort,
		MainPanel:           yamlConfig.Panels.Main,
		ExternalPanel:       yamlConfig.Panels.External,
		OutputDirExternal:   yamlConfig.Scrape.OutputDirExternal,
		OutputDirSender:     yamlConfig.Scrape.OutputDirSender,
		ServerDelay:         time.Duration(yamlConfig.Scrape.ServerDelaySeconds) * time.Second,
		RequestTimeout:      time.Duration(yamlConfig.Scrape.RequestTimeoutSeconds) * time.Second,
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	if err := config.validate(); err != nil {
		return BotConfig{}, err
	}

	return config, nil
}

func applyEnvOverrides(config *BotConfig) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		config.Token = v
	}
	if v := os.Getenv("OWNER_TELEGRAM_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.OwnerID = id
		}
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		config.DatabasePath = v
	}
	if v := os.Getenv("BLACKLIST_PATH"); v != "" {
		config.BlacklistPath = v
	}
	if v := os.Getenv("PANEL_URL"); v != "" {
		config.MainPanel.URL = v
	}
	if v := os.Getenv("PANEL_APPLICATION_KEY"); v != "" {
		config.MainPanel.ApplicationKey = v
	}
	if v := os.Getenv("PANEL_CLIENT_KEY"); v != "" {
		config.MainPanel.ClientKey = v
	}
	if v := os.Getenv("EXTERNAL_PANEL_URL"); v != "" {
		config.ExternalPanel.URL = v
	}
	if v := os.Getenv("EXTERNAL_PANEL_APPLICATION_KEY"); v != "" {
		config.ExternalPanel.ApplicationKey = v
	}
	if v := os.Getenv("EXTERNAL_PANEL_CLIENT_KEY"); v != "" {
		config.ExternalPanel.ClientKey = v
	}
	if v := os.Getenv("OUTPUT_EXTERNAL_DIR"); v != "" {
		config.OutputDirExternal = v
	}
	if v := os.Getenv("OUTPUT_SCRAPE_SENDER_DIR"); v != "" {
		config.OutputDirSender = v
	}
}

func applyDefaults(config *BotConfig) {
	if config.DatabasePath == "" {
		config.DatabasePath = "bot.db"
	}
	if config.BlacklistPath == "" {
		config.BlacklistPath = "blacklist.json"
	}
	if config.OutputDirExternal == "" {
		config.OutputDirExternal = "output-external"
	}
	if config.OutputDirSender == "" {
		config.OutputDirSender = "output-scrape-sender"
	}
	if config.ServerDelay <= 0 {
		config.ServerDelay = 3 * time.Second
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 35 * time.Second
	}
	if config.HealthServerPort == 0 {
		config.HealthServerPort = 8080
	}
}

// validate enforces the mandatory startup configuration; missing values are
// fatal at startup.
func (c BotConfig) validate() error {
	if c.Token == "" {
		return fmt.Errorf("bot token is not configured (bot.token or TELEGRAM_BOT_TOKEN)")
	}
	if c.OwnerID == 0 {
		return fmt.Errorf("owner id is not configured (bot.owner_id or OWNER_TELEGRAM_ID)")
	}
	if c.MainPanel.URL == "" || c.MainPanel.ApplicationKey == "" || c.MainPanel.ClientKey == "" {
		return fmt.Errorf("main panel is not fully configured (url, application_key, client_key)")
	}
	return nil
}
