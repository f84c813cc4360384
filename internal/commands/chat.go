package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/diogo/orbchat/internal/api"
	"github.com/diogo/orbchat/internal/config"
	"github.com/diogo/orbchat/internal/history"
	"github.com/diogo/orbchat/internal/session"
	"github.com/diogo/orbchat/internal/tui"
)

var resumeFlag string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with streaming responses.

While a response is streaming, enter or esc stops it. Use /chats to
open a stored conversation, /attach to include a file, and ctrl+t to
expand or collapse thinking blocks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().StringVarP(&resumeFlag, "resume", "r", "", "Resume a stored chat (id, index, or @last)")
}

func runChat() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	llm := getLLM(cfg)

	client, err := api.NewClient(cfg, api.WithLLM(llm))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// Prefer the backend's capability listing; the built-in registry is
	// the offline fallback.
	base := fetchLLMs(client)
	llms := config.ApplyCapabilityOverrides(base, cfg.CapabilityOverrides)

	store, err := history.DefaultStore()
	if err != nil {
		store = nil // History caching is optional
	}

	controller := session.NewController(session.WrapClient(client))

	if resumeFlag != "" {
		chatID := resumeFlag
		if store != nil {
			if resolved, rerr := history.NewResolver(store).Resolve(resumeFlag); rerr == nil {
				chatID = resolved
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := controller.LoadChat(ctx, chatID)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to resume chat: %w", err)
		}
	}

	model := tui.NewChatModel(controller, client, store, llm, llms).
		WithConfigUpdates(base, config.Updates.Subscribe())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}

	return nil
}
