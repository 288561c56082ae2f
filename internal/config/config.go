// Package config handles configuration loading and management for helpdesk.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for helpdesk.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Agents    AgentsConfig    `mapstructure:"agents"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Database  DatabaseConfig  `mapstructure:"database"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings for the decision oracle.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// AgentsConfig holds the listen addresses for every agent process.
// Specialist endpoint URLs are derived from these.
type AgentsConfig struct {
	RouterAddr  string `mapstructure:"router_addr"`
	DataAddr    string `mapstructure:"data_addr"`
	SupportAddr string `mapstructure:"support_addr"`
	BillingAddr string `mapstructure:"billing_addr"`
}

// ToolsConfig holds the customer-data tool server settings.
type ToolsConfig struct {
	Addr string `mapstructure:"addr"`
	// SeedFile is an optional YAML file of customers and tickets to
	// load into a fresh database.
	SeedFile string `mapstructure:"seed_file"`
}

// TimeoutsConfig holds the transport timeout settings.
type TimeoutsConfig struct {
	Connect time.Duration `mapstructure:"connect"`
	Call    time.Duration `mapstructure:"call"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// EndpointURL returns the JSON-RPC endpoint URL for a listen address.
func EndpointURL(addr string) string {
	return "http://" + addr + "/rpc"
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.helpdesk.yaml in current directory or parent)
// 3. User config (~/.config/helpdesk/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Project config takes precedence over the user config.
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("HELPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Database.Path = expandEnv(cfg.Database.Path)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Database.Path = expandEnv(cfg.Database.Path)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("agents.router_addr", cfg.Agents.RouterAddr)
	v.Set("agents.data_addr", cfg.Agents.DataAddr)
	v.Set("agents.support_addr", cfg.Agents.SupportAddr)
	v.Set("agents.billing_addr", cfg.Agents.BillingAddr)
	v.Set("tools.addr", cfg.Tools.Addr)
	v.Set("tools.seed_file", cfg.Tools.SeedFile)
	v.Set("timeouts.connect", cfg.Timeouts.Connect.String())
	v.Set("timeouts.call", cfg.Timeouts.Call.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("agents.router_addr", "127.0.0.1:8100")
	v.SetDefault("agents.data_addr", "127.0.0.1:8101")
	v.SetDefault("agents.support_addr", "127.0.0.1:8102")
	v.SetDefault("agents.billing_addr", "127.0.0.1:8103")

	v.SetDefault("tools.addr", "127.0.0.1:8110")
	v.SetDefault("tools.seed_file", "")

	v.SetDefault("timeouts.connect", "5s")
	v.SetDefault("timeouts.call", "30s")

	v.SetDefault("database.path", "helpdesk.db")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for helpdesk.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "helpdesk")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "helpdesk")
	}
	return filepath.Join(home, ".config", "helpdesk")
}

// findProjectConfig searches for .helpdesk.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".helpdesk.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Agents: AgentsConfig{
			RouterAddr:  "127.0.0.1:8100",
			DataAddr:    "127.0.0.1:8101",
			SupportAddr: "127.0.0.1:8102",
			BillingAddr: "127.0.0.1:8103",
		},
		Tools: ToolsConfig{
			Addr: "127.0.0.1:8110",
		},
		Timeouts: TimeoutsConfig{
			Connect: 5 * time.Second,
			Call:    30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "helpdesk.db",
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
