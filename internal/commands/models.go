package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/orbchat/internal/api"
	"github.com/diogo/orbchat/internal/config"
	"github.com/diogo/orbchat/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models and their capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		client, err := api.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		defer client.Close()

		llms := available(cfg, client)

		nameStyle := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
		dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

		for _, llm := range llms {
			marker := "  "
			if llm.ID == cfg.DefaultLLM {
				marker = "* "
			}
			fmt.Printf("%s%s %s\n", marker, nameStyle.Render(llm.Name), dimStyle.Render("(id "+llm.ID+")"))
			fmt.Printf("    %s\n", dimStyle.Render(capabilitySummary(llm.Capabilities)))
		}

		return nil
	},
}

func capabilitySummary(caps models.Capabilities) string {
	out := ""
	add := func(label string, on bool) {
		if !on {
			return
		}
		if out != "" {
			out += ", "
		}
		out += label
	}
	add("text", caps.Text)
	add("images", caps.Image)
	add("pdf", caps.PDF)
	add("tools", caps.Tools)
	if out == "" {
		out = "none"
	}
	return out
}

// fetchLLMs returns the backend's capability listing when reachable,
// otherwise the built-in registry.
func fetchLLMs(client *api.Client) []models.LLM {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	llms, err := client.FetchCapabilities(ctx)
	if err != nil {
		return models.AllLLMs()
	}
	return llms
}

// available returns the selectable models with local overrides applied.
func available(cfg config.Config, client *api.Client) []models.LLM {
	return config.ApplyCapabilityOverrides(fetchLLMs(client), cfg.CapabilityOverrides)
}
