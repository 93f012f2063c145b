package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lodgeportal/cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Keys: api_base_url, log_level, request_timeout, resend_window, session_store,
session_ttl, redis_addr, keyring_backends (comma separated).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := configPath
		if p == "" {
			var err error
			if p, err = config.Path(); err != nil {
				return err
			}
		}
		cfg, err := config.LoadStoredFile(p)
		if err != nil {
			return err
		}
		if err := setConfigValue(&cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveFile(p, cfg); err != nil {
			return err
		}
		pterm.Success.Printfln("%s updated.", args[0])
		return nil
	},
}

func setConfigValue(cfg *config.Config, key, value string) error {
	duration := func(dst *time.Duration) error {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s must be a positive duration such as 30s", key)
		}
		*dst = d
		return nil
	}

	switch strings.ReplaceAll(key, "-", "_") {
	case "api_base_url":
		cfg.APIBaseURL = strings.TrimRight(value, "/")
	case "log_level":
		cfg.LogLevel = value
	case "request_timeout":
		return duration(&cfg.RequestTimeout)
	case "resend_window":
		return duration(&cfg.ResendWindow)
	case "session_ttl":
		return duration(&cfg.SessionTTL)
	case "session_store":
		cfg.SessionStore = strings.ToLower(value)
	case "redis_addr":
		cfg.RedisAddr = value
	case "keyring_backends":
		cfg.KeyringBackends = nil
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KeyringBackends = append(cfg.KeyringBackends, b)
			}
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
