package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/orbchat/internal/api"
	"github.com/diogo/orbchat/internal/config"
	"github.com/diogo/orbchat/internal/history"
	"github.com/diogo/orbchat/internal/models"
	"github.com/diogo/orbchat/internal/parse"
	"github.com/diogo/orbchat/internal/render"
)

var (
	exportFormatFlag  string
	searchContentFlag bool
	syncFlag          bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage cached chat history",
	Long: `Manage the local chat history cache.

The backend keeps the canonical transcripts; the local cache mirrors
chats you have opened so listing, search, and export work offline.

` + history.ListAliases(),
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached chats",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.DefaultStore()
		if err != nil {
			return err
		}

		if syncFlag {
			if err := syncHistory(store); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: sync failed: %v\n", err)
			}
		}

		conversations, err := store.ListConversations()
		if err != nil {
			return err
		}
		if len(conversations) == 0 {
			fmt.Println("No cached chats. Run with --sync to pull from the backend.")
			return nil
		}

		numStyle := lipgloss.NewStyle().Foreground(colorTextDim)
		titleStyle := lipgloss.NewStyle().Foreground(colorText)
		metaStyle := lipgloss.NewStyle().Foreground(colorTextMute)

		for i, conv := range conversations {
			fmt.Printf("%s %s %s\n",
				numStyle.Render(fmt.Sprintf("%2d.", i+1)),
				titleStyle.Render(conv.Title),
				metaStyle.Render(fmt.Sprintf("(%d msgs, %s)", len(conv.Messages), history.FormatRelativeTime(conv.UpdatedAt))),
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a cached chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.DefaultStore()
		if err != nil {
			return err
		}

		conv, err := history.NewResolver(store).ResolveWithInfo(args[0])
		if err != nil {
			return err
		}

		cfg, _ := config.LoadConfig()
		width := getTerminalWidth() - 4
		if width < 40 {
			width = 40
		}

		fmt.Println(lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(conv.Title))
		fmt.Println()

		for _, msg := range conv.Messages {
			label := "You"
			if msg.Role == models.RoleAssistant {
				label = "Orb"
			}
			fmt.Println(assistantLabelStyle.Render(label))

			view := parse.Parse(models.ResolveRaw(msg.Content))
			opts := render.MessageOptions{
				Markdown:     render.FromConfig(cfg.Markdown).WithWidth(width),
				ShowThinking: false,
			}
			fmt.Println(render.Message(view, opts))
			fmt.Println()
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref> [file]",
	Short: "Export a cached chat to markdown or JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.DefaultStore()
		if err != nil {
			return err
		}

		id, err := history.NewResolver(store).Resolve(args[0])
		if err != nil {
			return err
		}

		var data []byte
		switch history.ExportFormat(exportFormatFlag) {
		case history.ExportFormatJSON:
			data, err = store.ExportToJSON(id)
		default:
			var md string
			md, err = store.ExportToMarkdown(id)
			data = []byte(md)
		}
		if err != nil {
			return err
		}

		if len(args) == 2 {
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Printf("✓ Exported to %s\n", args[1])
			return nil
		}

		fmt.Print(string(data))
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cached chats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.DefaultStore()
		if err != nil {
			return err
		}

		results, err := store.SearchConversations(args[0], searchContentFlag)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		titleStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)
		snippetStyle := lipgloss.NewStyle().Foreground(colorTextDim)

		for _, r := range results {
			fmt.Println(titleStyle.Render(r.Conversation.Title))
			if r.MatchField == "content" {
				fmt.Println("  " + snippetStyle.Render(r.MatchSnippet))
			}
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a chat from the backend and the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.DefaultStore()
		if err != nil {
			return err
		}

		id, err := history.NewResolver(store).Resolve(args[0])
		if err != nil {
			return err
		}

		cfg, cfgErr := config.LoadConfig()
		if cfgErr == nil {
			if client, cerr := api.NewClient(cfg); cerr == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				if derr := client.DeleteChat(ctx, id); derr != nil {
					fmt.Fprintf(os.Stderr, "Warning: backend delete failed: %v\n", derr)
				}
				cancel()
				client.Close()
			}
		}

		if err := store.DeleteConversation(id); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %s\n", id)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.DefaultStore()
		if err != nil {
			return err
		}
		if err := store.ClearAll(); err != nil {
			return err
		}
		fmt.Println("✓ Local cache cleared")
		return nil
	},
}

// syncHistory pulls the chat list and transcripts from the backend into
// the local cache.
func syncHistory(store *history.Store) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	chats, err := client.FetchChats(ctx)
	if err != nil {
		return err
	}

	for _, chat := range chats {
		details, err := client.FetchChat(ctx, chat.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to fetch chat %s: %v\n", chat.ID, err)
			continue
		}

		msgs := make([]models.Message, 0, len(details.Messages))
		for _, m := range details.Messages {
			msgs = append(msgs, models.Message{
				ID:         m.ID,
				Role:       m.Role,
				Raw:        models.ResolveRaw(m.Content),
				CreatedAt:  m.CreatedAt,
				Historical: true,
			})
		}
		if err := store.CacheChat(chat.ID, details.Title, "", msgs); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to cache chat %s: %v\n", chat.ID, err)
		}
	}
	return nil
}

func init() {
	historyExportCmd.Flags().StringVar(&exportFormatFlag, "format", "markdown", "Export format (markdown, json)")
	historySearchCmd.Flags().BoolVar(&searchContentFlag, "content", false, "Search message content, not just titles")
	historyListCmd.Flags().BoolVar(&syncFlag, "sync", false, "Pull chats from the backend first")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
