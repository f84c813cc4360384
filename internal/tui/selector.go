package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/orbchat/internal/history"
)

// updateChatSelector handles input while the chat selector overlay is
// open.
func (m Model) updateChatSelector(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case chatsLoadedMsg:
		m.chatsLoading = false
		if msg.err != nil {
			m.selectingChat = false
			m.err = msg.err
		} else {
			m.chatList = msg.chats
		}

	case chatLoadedMsg:
		m.selectingChat = false
		if msg.err != nil {
			m.err = msg.err
		}

	case sessionEventMsg:
		m.applyEvent(msg.event)
		return m, waitForEvent(m.controller.Events())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.controller.Close()
			return m, tea.Quit

		case "esc", "q":
			m.selectingChat = false

		case "up", "k":
			if m.chatCursor > 0 {
				m.chatCursor--
			}

		case "down", "j":
			if m.chatCursor < len(m.chatList)-1 {
				m.chatCursor++
			}

		case "enter":
			if m.chatsLoading || len(m.chatList) == 0 {
				break
			}
			chatID := m.chatList[m.chatCursor].ID
			return m, m.openChat(chatID)
		}
	}

	return m, nil
}

// openChat loads the selected chat into the session.
func (m Model) openChat(chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return chatLoadedMsg{err: m.controller.LoadChat(ctx, chatID)}
	}
}

// renderChatSelector renders the chat list overlay.
func (m Model) renderChatSelector() string {
	contentWidth := m.width - 4

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Stored chats"))
	sb.WriteString("\n\n")

	switch {
	case m.chatsLoading:
		sb.WriteString(loadingStyle.Render("Loading chats..."))

	case len(m.chatList) == 0:
		sb.WriteString(hintStyle.Render("No stored chats yet."))

	default:
		visible := m.height - 8
		if visible < 3 {
			visible = 3
		}
		start := 0
		if m.chatCursor >= visible {
			start = m.chatCursor - visible + 1
		}
		end := start + visible
		if end > len(m.chatList) {
			end = len(m.chatList)
		}

		for i := start; i < end; i++ {
			chat := m.chatList[i]
			title := chat.Title
			if title == "" {
				title = chat.ID
			}
			meta := ""
			if !chat.UpdatedAt.IsZero() {
				meta = selectorMetaStyle.Render("  " + history.FormatRelativeTime(chat.UpdatedAt))
			}

			line := selectorItemStyle.Render(title) + meta
			if i == m.chatCursor {
				line = selectorSelectedStyle.Render("> "+title) + meta
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render(fmt.Sprintf("%d chats  •  enter open  •  esc back", len(m.chatList))))

	panel := messagesAreaStyle.Width(contentWidth).Render(sb.String())
	return lipgloss.JoinVertical(lipgloss.Left, panel)
}
