package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/orbchat/internal/models"
	"github.com/diogo/orbchat/internal/parse"
)

var (
	thinkingHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Bold(true)

	thinkingBodyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true)

	toolStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	mediaLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// MessageOptions controls how a message view renders.
type MessageOptions struct {
	Markdown Options
	// ShowThinking expands completed thinking blocks. Collapsed blocks
	// render as a one-line header.
	ShowThinking bool
	// ShowToolStatus appends the current tool event line while a tool
	// phase is running.
	ShowToolStatus bool
}

// Message renders a parsed message view for the terminal, in the
// standard order: media labels, thinking, visible text, tool status.
func Message(view *parse.View, opts MessageOptions) string {
	var parts []string

	for _, item := range view.MediaItems {
		switch item.Type {
		case models.ContentImageURL:
			parts = append(parts, mediaLabelStyle.Render("🖼️  [image]"))
		case models.ContentFileURL:
			parts = append(parts, mediaLabelStyle.Render("📎 [attachment]"))
		}
	}

	if view.IsThinking {
		header := thinkingHeaderStyle.Render("💭 Thinking...")
		body := thinkingBodyStyle.Render(view.InProgressThinking)
		parts = append(parts, header+"\n"+body)
	}

	for _, block := range view.ThinkingBlocks {
		if opts.ShowThinking || block.IsOpen {
			header := thinkingHeaderStyle.Render("💭 Thought")
			body := thinkingBodyStyle.Render(block.Text)
			parts = append(parts, header+"\n"+body)
		} else {
			parts = append(parts, thinkingHeaderStyle.Render("💭 Thought (hidden)"))
		}
	}

	if text := strings.TrimSpace(view.VisibleText); text != "" {
		rendered, err := Markdown(text, opts.Markdown)
		if err != nil {
			rendered = text
		}
		parts = append(parts, strings.TrimRight(rendered, "\n"))
	}

	if opts.ShowToolStatus && !view.ToolPhaseDone() {
		if status := view.CurrentToolStatus(); status != "" {
			parts = append(parts, toolStatusStyle.Render(fmt.Sprintf("⚙ %s", status)))
		}
	}

	return strings.Join(parts, "\n\n")
}
