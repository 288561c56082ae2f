package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/helpdesk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify helpdesk configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/helpdesk/config.yaml
Project-specific overrides can be placed in .helpdesk.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, _ := config.GetAPIKey(cfg)

	fmt.Printf("anthropic.api_key: %s (%s)\n", config.MaskAPIKey(key), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("agents.router_addr: %s\n", cfg.Agents.RouterAddr)
	fmt.Printf("agents.data_addr: %s\n", cfg.Agents.DataAddr)
	fmt.Printf("agents.support_addr: %s\n", cfg.Agents.SupportAddr)
	fmt.Printf("agents.billing_addr: %s\n", cfg.Agents.BillingAddr)
	fmt.Printf("tools.addr: %s\n", cfg.Tools.Addr)
	fmt.Printf("tools.seed_file: %s\n", cfg.Tools.SeedFile)
	fmt.Printf("timeouts.connect: %s\n", cfg.Timeouts.Connect)
	fmt.Printf("timeouts.call: %s\n", cfg.Timeouts.Call)
	fmt.Printf("database.path: %s\n", cfg.Database.Path)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "agents.router_addr":
		return cfg.Agents.RouterAddr, nil
	case "agents.data_addr":
		return cfg.Agents.DataAddr, nil
	case "agents.support_addr":
		return cfg.Agents.SupportAddr, nil
	case "agents.billing_addr":
		return cfg.Agents.BillingAddr, nil
	case "tools.addr":
		return cfg.Tools.Addr, nil
	case "tools.seed_file":
		return cfg.Tools.SeedFile, nil
	case "timeouts.connect":
		return cfg.Timeouts.Connect.String(), nil
	case "timeouts.call":
		return cfg.Timeouts.Call.String(), nil
	case "database.path":
		return cfg.Database.Path, nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return fmt.Errorf("refusing to save api_key: %w", err)
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for use_aws_bedrock: %w", err)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "agents.router_addr":
		cfg.Agents.RouterAddr = value
	case "agents.data_addr":
		cfg.Agents.DataAddr = value
	case "agents.support_addr":
		cfg.Agents.SupportAddr = value
	case "agents.billing_addr":
		cfg.Agents.BillingAddr = value
	case "tools.addr":
		cfg.Tools.Addr = value
	case "tools.seed_file":
		cfg.Tools.SeedFile = value
	case "timeouts.connect":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for connect: %w", err)
		}
		cfg.Timeouts.Connect = d
	case "timeouts.call":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for call: %w", err)
		}
		cfg.Timeouts.Call = d
	case "database.path":
		cfg.Database.Path = value
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for refresh_rate: %w", err)
		}
		cfg.TUI.RefreshRate = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
