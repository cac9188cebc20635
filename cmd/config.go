package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	cfgpkg "github.com/tenderloom/tenderloom/internal/config"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
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
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		key, value := args[0], args[1]
		switch key {
		case "ollama_host":
			cfg.OllamaHost = value
		case "ollama_model":
			cfg.OllamaModel = value
		case "temperature":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid temperature %q", value)
			}
			cfg.Temperature = f
		case "max_tokens":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid max_tokens %q", value)
			}
			cfg.MaxTokens = n
		case "context_window":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid context_window %q", value)
			}
			cfg.ContextWindow = n
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ %s = %s\n", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
