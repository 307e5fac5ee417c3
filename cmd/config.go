package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/algorzen/insight-reporter/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Insight Reporter configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		fmt.Printf("model: %s\n", cfg.Model)
		fmt.Printf("base_url: %s\n", cfg.BaseURL)
		fmt.Printf("remote_disabled: %t\n", cfg.RemoteDisabled)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		if cfg.Tone != "" {
			fmt.Printf("tone: %s\n", cfg.Tone)
		}
		if cfg.Company != "" {
			fmt.Printf("company: %s\n", cfg.Company)
		}
		if cfg.Author != "" {
			fmt.Printf("author: %s\n", cfg.Author)
		}
		fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		fmt.Printf("runs_dir: %s\n", cfg.RunsDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "model":
			cfg.Model = val
		case "base_url":
			cfg.BaseURL = val
		case "remote_disabled":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid remote_disabled: %s", val)
			}
			cfg.RemoteDisabled = b
		case "http_timeout_sec":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid http_timeout_sec: %s", val)
			}
			cfg.HTTPTimeoutSec = n
		case "tone":
			cfg.Tone = val
		case "company":
			cfg.Company = val
		case "author":
			cfg.Author = val
		case "max_rows":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid max_rows: %s", val)
			}
			cfg.MaxRows = n
		case "runs_dir":
			cfg.RunsDir = val
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
