package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/orbchat/internal/api"
	"github.com/diogo/orbchat/internal/config"
	"github.com/diogo/orbchat/internal/content"
	"github.com/diogo/orbchat/internal/history"
	"github.com/diogo/orbchat/internal/models"
	"github.com/diogo/orbchat/internal/parse"
	"github.com/diogo/orbchat/internal/render"
	"github.com/diogo/orbchat/internal/session"
)

// Message types for the TUI
type (
	sessionEventMsg struct {
		event session.Event
	}
	errMsg struct {
		err error
	}
	chatsLoadedMsg struct {
		chats []api.ChatSummary
		err   error
	}
	chatLoadedMsg struct {
		err error
	}
	configUpdatedMsg struct {
		cfg config.Config
	}
)

// ChatLister lists stored chats for the selector overlay.
type ChatLister interface {
	FetchChats(ctx context.Context) ([]api.ChatSummary, error)
}

// ModelSwitcher is implemented by backends whose active model can be
// changed between exchanges.
type ModelSwitcher interface {
	SetLLM(llm models.LLM)
}

// displayMessage pairs a transcript message with its derived view. The
// view is recomputed on every delta for the streaming message and once
// for everything else.
type displayMessage struct {
	msg          models.Message
	view         *parse.View
	showThinking bool
}

// Model represents the TUI state
type Model struct {
	controller *session.Controller
	lister     ChatLister
	store      *history.Store
	llm        models.LLM
	llms       []models.LLM

	// Capability list before local overrides, plus the channel that
	// delivers configuration saves made elsewhere in the process.
	baseLLMs   []models.LLM
	cfgUpdates <-chan config.Config

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	messages []displayMessage
	state    session.State
	ready    bool
	err      error

	pendingAttachment *models.Attachment

	// Chat selector state
	selectingChat bool
	chatList      []api.ChatSummary
	chatsLoading  bool
	chatCursor    int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat TUI over a session controller.
func NewChatModel(controller *session.Controller, lister ChatLister, store *history.Store, llm models.LLM, llms []models.LLM) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here... (/help for commands)"
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		controller: controller,
		lister:     lister,
		store:      store,
		llm:        llm,
		llms:       llms,
		textarea:   ta,
		spinner:    s,
	}
}

// WithConfigUpdates makes the model re-apply capability overrides when
// the configuration is saved in this process. base is the capability
// list before overrides.
func (m Model) WithConfigUpdates(base []models.LLM, ch <-chan config.Config) Model {
	m.baseLLMs = base
	m.cfgUpdates = ch
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.spinner.Tick,
		waitForEvent(m.controller.Events()),
	}
	if m.cfgUpdates != nil {
		cmds = append(cmds, waitForConfigUpdate(m.cfgUpdates))
	}
	return tea.Batch(cmds...)
}

// waitForEvent blocks on the controller's event channel and republishes
// events as bubbletea messages.
func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return sessionEventMsg{event: ev}
	}
}

// waitForConfigUpdate blocks on the config update channel.
func waitForConfigUpdate(ch <-chan config.Config) tea.Cmd {
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configUpdatedMsg{cfg: cfg}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.selectingChat {
		return m.updateChatSelector(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.controller.Close()
			return m, tea.Quit

		case "esc":
			if m.state.Busy() {
				m.controller.Stop()
			} else {
				m.controller.Close()
				return m, tea.Quit
			}

		case "ctrl+t":
			m.toggleLastThinking()
			m.updateViewport()

		case "enter":
			return m.handleSubmit()
		}

	case sessionEventMsg:
		m.applyEvent(msg.event)
		cmds = append(cmds, waitForEvent(m.controller.Events()))

	case chatsLoadedMsg:
		m.chatsLoading = false
		if msg.err != nil {
			m.selectingChat = false
			m.err = msg.err
		} else {
			m.chatList = msg.chats
		}

	case chatLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		}

	case configUpdatedMsg:
		m.applyConfig(msg.cfg)
		cmds = append(cmds, waitForConfigUpdate(m.cfgUpdates))

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		if m.state.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.state.Busy() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleSubmit interprets the input line: slash commands first, then a
// regular message submit. While streaming, enter doubles as stop.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state.Busy() {
		m.controller.Stop()
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "" && m.pendingAttachment == nil {
		return m, nil
	}

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		m.controller.Close()
		return m, tea.Quit

	case input == "/new":
		m.textarea.Reset()
		m.controller.NewChat()
		return m, nil

	case input == "/chats" || input == "/history":
		m.textarea.Reset()
		m.selectingChat = true
		m.chatsLoading = true
		m.chatCursor = 0
		return m, m.loadChats()

	case strings.HasPrefix(input, "/attach "):
		m.textarea.Reset()
		return m.attachFile(strings.TrimSpace(strings.TrimPrefix(input, "/attach ")))

	case input == "/detach":
		m.textarea.Reset()
		m.pendingAttachment = nil
		return m, nil

	case input == "/model" || strings.HasPrefix(input, "/model "):
		m.textarea.Reset()
		return m.switchModel(strings.TrimSpace(strings.TrimPrefix(input, "/model")))

	case input == "/help":
		m.textarea.Reset()
		m.err = nil
		m.appendSystemNote(helpText)
		return m, nil
	}

	payload := api.Payload{Text: input, Attachment: m.pendingAttachment}
	if err := m.checkCapabilities(payload); err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.textarea.Reset()
	m.pendingAttachment = nil

	if err := m.controller.Submit(payload); err != nil {
		m.err = err
	}
	return m, tea.Batch(m.spinner.Tick)
}

const helpText = `Commands:
  /new            start a new chat
  /chats          open a stored chat
  /model [id]     list models or switch the active one
  /attach <path>  attach a file to the next message
  /detach         drop the pending attachment
  /quit           exit`

// switchModel lists the available models or switches the active one by
// id or name. A switch is persisted as the new default.
func (m Model) switchModel(arg string) (tea.Model, tea.Cmd) {
	if arg == "" {
		var b strings.Builder
		b.WriteString("Models:\n")
		for _, l := range m.llms {
			marker := "  "
			if l.ID == m.llm.ID {
				marker = "* "
			}
			fmt.Fprintf(&b, "%s%s (id %s)\n", marker, l.Name, l.ID)
		}
		m.appendSystemNote(strings.TrimRight(b.String(), "\n"))
		return m, nil
	}

	for _, l := range m.llms {
		if l.ID != arg && !strings.EqualFold(l.Name, arg) {
			continue
		}
		m.llm = l
		m.err = nil
		if sw, ok := m.lister.(ModelSwitcher); ok {
			sw.SetLLM(l)
		}
		if cfg, err := config.LoadConfig(); err == nil && cfg.DefaultLLM != l.ID {
			cfg.DefaultLLM = l.ID
			_ = config.SaveConfig(cfg)
		}
		m.appendSystemNote("Model switched to " + l.Name)
		return m, nil
	}

	m.err = fmt.Errorf("unknown model %q (/model lists the available ones)", arg)
	return m, nil
}

// applyConfig re-applies capability overrides after a config save,
// keeping the active model's capability flags in sync.
func (m *Model) applyConfig(cfg config.Config) {
	base := m.baseLLMs
	if base == nil {
		base = m.llms
	}
	m.llms = config.ApplyCapabilityOverrides(base, cfg.CapabilityOverrides)
	for _, l := range m.llms {
		if l.ID == m.llm.ID {
			m.llm = l
		}
	}
}

// attachFile stages a file for the next submit.
func (m Model) attachFile(path string) (tea.Model, tea.Cmd) {
	if path == "" {
		m.err = fmt.Errorf("usage: /attach <path>")
		return m, nil
	}
	att, err := content.LoadAttachment(path)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.pendingAttachment = att
	return m, nil
}

// checkCapabilities rejects attachments the selected model cannot take.
func (m Model) checkCapabilities(p api.Payload) error {
	if p.Attachment == nil {
		return nil
	}
	caps := m.llm.Capabilities
	switch p.Attachment.Class {
	case models.MimeImage:
		if !caps.Image {
			return fmt.Errorf("model %s does not accept images", m.llm.Name)
		}
	case models.MimePDF:
		if !caps.PDF {
			return fmt.Errorf("model %s does not accept PDFs", m.llm.Name)
		}
	}
	return nil
}

// applyEvent folds one controller event into the display state.
func (m *Model) applyEvent(ev session.Event) {
	switch ev := ev.(type) {
	case session.StateEvent:
		m.state = ev.State

	case session.ChatEvent:
		m.rebuildFromTranscript()

	case session.MessageEvent:
		m.appendDisplay(ev.Message)
		m.updateViewport()
		m.viewport.GotoBottom()

	case session.DeltaEvent:
		m.applyDelta(ev)
		m.updateViewport()
		m.viewport.GotoBottom()

	case session.ErrorEvent:
		m.err = ev.Err

	case session.DoneEvent:
		m.cacheTranscript()
	}
}

func (m *Model) appendDisplay(msg models.Message) {
	m.messages = append(m.messages, displayMessage{
		msg:          msg,
		view:         parse.Parse(msg.Raw),
		showThinking: !msg.Historical,
	})
}

func (m *Model) applyDelta(ev session.DeltaEvent) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].msg.ID == ev.MessageID {
			raw := models.RawContent{Kind: models.RawPlainText, Text: ev.Text}
			m.messages[i].msg.Raw = raw
			m.messages[i].view = parse.Parse(raw)
			return
		}
	}
}

// rebuildFromTranscript resyncs the display with the controller's
// transcript, used when a chat is switched or cleared.
func (m *Model) rebuildFromTranscript() {
	m.messages = nil
	for _, msg := range m.controller.Messages() {
		m.appendDisplay(msg)
	}
	m.err = nil
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) appendSystemNote(text string) {
	note := models.NewMessage(models.RoleSystem, models.RawContent{
		Kind: models.RawPlainText,
		Text: text,
	})
	m.appendDisplay(note)
	m.updateViewport()
	m.viewport.GotoBottom()
}

// toggleLastThinking flips thinking visibility on the most recent
// assistant message that has any thinking content.
func (m *Model) toggleLastThinking() {
	for i := len(m.messages) - 1; i >= 0; i-- {
		dm := &m.messages[i]
		if dm.msg.Role != models.RoleAssistant {
			continue
		}
		if len(dm.view.ThinkingBlocks) == 0 && !dm.view.IsThinking {
			continue
		}
		dm.showThinking = !dm.showThinking
		return
	}
}

// cacheTranscript mirrors the finished exchange into the local history
// cache. Best effort.
func (m *Model) cacheTranscript() {
	if m.store == nil {
		return
	}
	chatID := m.controller.ChatID()
	if chatID == "" {
		return
	}
	_ = m.store.CacheChat(chatID, "", m.llm.ID, m.controller.Messages())
}

// loadChats fetches the chat list for the selector.
func (m Model) loadChats() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		chats, err := m.lister.FetchChats(ctx)
		return chatsLoadedMsg{chats: chats, err: err}
	}
}

// layout recomputes component sizes from the window dimensions.
func (m *Model) layout() {
	headerHeight := 4
	inputHeight := 6
	statusHeight := 1
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.textarea.SetWidth(contentWidth - 4)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(contentWidth - 4)
	}
	m.updateViewport()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.selectingChat {
		return m.renderChatSelector()
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{
		titleStyle.Render("◍ Orb Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.llm.Name),
	}
	if chatID := m.controller.ChatID(); chatID != "" {
		short := chatID
		if len(short) > 8 {
			short = short[:8]
		}
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(short),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	header := headerStyle.Width(contentWidth).Render(headerContent)
	sections = append(sections, header)

	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	var inputContent string
	if m.state.Busy() {
		inputContent = m.renderBusy()
	} else {
		label := inputLabelStyle.Render("You")
		if m.pendingAttachment != nil {
			label += attachmentStyle.Render(fmt.Sprintf("  📎 %s", m.pendingAttachment.Name))
		}
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			label,
			m.textarea.View(),
		)
	}

	inputPanel := inputPanelStyle.Width(contentWidth).Render(inputContent)
	sections = append(sections, inputPanel)

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the empty-transcript screen
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("◍")
	title := welcomeTitleStyle.Width(width).Render("Welcome to Orb Chat")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderBusy renders the input panel while an exchange runs.
func (m Model) renderBusy() string {
	var label string
	switch m.state {
	case session.StateCreatingChat:
		label = "Creating chat"
	case session.StateAwaitingStream:
		label = "Waiting for response"
	case session.StateStreaming:
		label = "Streaming"
	default:
		label = "Working"
	}
	hint := hintStyle.Render("  (enter or esc to stop)")
	return fmt.Sprintf("%s %s%s", m.spinner.View(), loadingStyle.Render(label), hint)
}

// renderStatusBar renders the bottom shortcut bar
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Stop/Quit"},
		{"Ctrl+T", "Thinking"},
		{"↑↓", "Scroll"},
	}
	if m.state.Busy() {
		shortcuts[0].desc = "Stop"
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, dm := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(dm, bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderMessage renders one transcript entry in display order: label,
// media, thinking, visible text, tool status.
func (m *Model) renderMessage(dm displayMessage, width int) string {
	switch dm.msg.Role {
	case models.RoleUser:
		label := userLabelStyle.Render("⬤ You")
		body := dm.view.VisibleText
		if dm.msg.Attachment != nil {
			body = fmt.Sprintf("📎 %s\n%s", dm.msg.Attachment.Name, body)
		} else if len(dm.view.MediaItems) > 0 {
			body = "📎 attachment\n" + body
		}
		bubble := userBubbleStyle.Width(width).Render(strings.TrimSpace(body))
		return label + "\n" + bubble

	case models.RoleSystem:
		return systemLabelStyle.Render("! " + dm.view.VisibleText)

	default:
		return m.renderAssistant(dm, width)
	}
}

func (m *Model) renderAssistant(dm displayMessage, width int) string {
	var parts []string
	parts = append(parts, assistantLabelStyle.Render("◍ Orb"))

	for _, item := range dm.view.MediaItems {
		switch item.Type {
		case models.ContentImageURL:
			parts = append(parts, mediaLabelStyle.Render("🖼️  [image]"))
		case models.ContentFileURL:
			parts = append(parts, mediaLabelStyle.Render("📎 [attachment]"))
		}
	}

	if dm.view.IsThinking {
		header := thinkingHeaderStyle.Render("💭 Thinking...")
		body := thinkingStyle.Width(width - 4).Render(dm.view.InProgressThinking)
		parts = append(parts, header+"\n"+body)
	}

	for _, block := range dm.view.ThinkingBlocks {
		if dm.showThinking || block.IsOpen {
			header := thinkingHeaderStyle.Render("💭 Thought")
			body := thinkingStyle.Width(width - 4).Render(block.Text)
			parts = append(parts, header+"\n"+body)
		} else {
			parts = append(parts, thinkingHeaderStyle.Render("💭 Thought (ctrl+t to expand)"))
		}
	}

	if text := strings.TrimSpace(dm.view.VisibleText); text != "" {
		rendered, err := render.MarkdownWithWidth(text, width-4)
		if err != nil {
			rendered = text
		}
		parts = append(parts, strings.TrimRight(rendered, "\n"))
	}

	if !dm.view.ToolPhaseDone() {
		if status := dm.view.CurrentToolStatus(); status != "" {
			parts = append(parts, toolStatusStyle.Render("⚙ "+status))
		}
	}

	return strings.Join(parts, "\n")
}
