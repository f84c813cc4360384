package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/orbchat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage orbchat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		keyStyle := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
		valStyle := lipgloss.NewStyle().Foreground(colorText)
		dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

		token := "(not set)"
		if cfg.AccessToken != "" {
			token = "****"
		}

		rows := []struct{ key, val string }{
			{"backend-url", cfg.BackendURL},
			{"token", token},
			{"model", cfg.DefaultLLM},
			{"verbose", strconv.FormatBool(cfg.Verbose)},
			{"log-level", cfg.LogLevel},
			{"clipboard", strconv.FormatBool(cfg.CopyToClipboard)},
			{"markdown-style", cfg.Markdown.Style},
		}
		for _, row := range rows {
			fmt.Printf("%s %s\n", keyStyle.Render(row.key+":"), valStyle.Render(row.val))
		}

		if path, err := config.GetConfigPath(); err == nil {
			fmt.Println(dimStyle.Render("\nconfig file: " + path))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Keys:
  backend-url     Base URL of the Orb backend
  token           Bearer token sent with every request
  model           Default model id
  verbose         true/false
  log-level       debug, info, warn, error
  clipboard       Copy responses to clipboard (true/false)
  markdown-style  dark, light, or path to a glamour theme`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		key, value := args[0], args[1]
		switch key {
		case "backend-url":
			cfg.BackendURL = value
		case "token":
			cfg.AccessToken = value
		case "model":
			cfg.DefaultLLM = value
		case "verbose":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean: %s", value)
			}
			cfg.Verbose = b
		case "log-level":
			cfg.LogLevel = value
		case "clipboard":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean: %s", value)
			}
			cfg.CopyToClipboard = b
		case "markdown-style":
			cfg.Markdown.Style = value
		default:
			return fmt.Errorf("unknown key: %s", key)
		}

		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		okStyle := lipgloss.NewStyle().Foreground(colorSuccess)
		fmt.Println(okStyle.Render(fmt.Sprintf("✓ %s updated", key)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
