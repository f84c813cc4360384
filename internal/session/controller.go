package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/diogo/orbchat/internal/api"
	apperrors "github.com/diogo/orbchat/internal/errors"
	"github.com/diogo/orbchat/internal/logging"
	"github.com/diogo/orbchat/internal/models"
)

// stoppedSuffix marks an assistant message whose stream was cancelled
// before completion. The partial text above it is kept.
const stoppedSuffix = " (stopped by user)"

// Stream is the delta source for one exchange.
type Stream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Backend is the slice of the API client the controller needs.
type Backend interface {
	OpenNewChatStream(ctx context.Context, p api.Payload) (Stream, string, error)
	OpenChatStream(ctx context.Context, chatID string, p api.Payload) (Stream, error)
	CreateChat(ctx context.Context, p api.Payload) (string, error)
	PersistMessage(ctx context.Context, chatID, content, role string) error
	NotifyAbort(ctx context.Context, chatID string) error
	FetchChat(ctx context.Context, chatID string) (*api.ChatDetails, error)
}

// clientBackend adapts *api.Client to the Backend interface.
type clientBackend struct {
	*api.Client
}

func (b clientBackend) OpenNewChatStream(ctx context.Context, p api.Payload) (Stream, string, error) {
	stream, err := b.Client.OpenNewChatStream(ctx, p)
	if err != nil {
		return nil, "", err
	}
	return stream, stream.ChatID, nil
}

func (b clientBackend) OpenChatStream(ctx context.Context, chatID string, p api.Payload) (Stream, error) {
	return b.Client.OpenChatStream(ctx, chatID, p)
}

// WrapClient adapts an API client for use as a controller backend.
func WrapClient(c *api.Client) Backend {
	return clientBackend{c}
}

// Controller owns one chat session: the transcript, the active
// exchange, and cancellation. All mutation goes through it. Events are
// delivered on the channel returned by Events; consumers must drain it.
type Controller struct {
	backend Backend
	abort   *AbortCoordinator
	events  chan Event
	done    chan struct{}

	mu       sync.Mutex
	state    State
	chatID   string
	messages []models.Message
	active   *exchange

	closeOnce sync.Once
}

// exchange is one in-flight user turn.
type exchange struct {
	cancel      context.CancelFunc
	assistantID string
	finished    chan struct{}
}

// NewController creates a controller over the given backend.
func NewController(backend Backend) *Controller {
	return &Controller{
		backend: backend,
		abort:   NewAbortCoordinator(),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
}

// Events returns the notification channel. Closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// State returns the current exchange phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChatID returns the active chat id, "" before the first exchange.
func (c *Controller) ChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatID
}

// Messages returns a snapshot of the transcript.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Submit starts an exchange for the payload. While an exchange is
// already running, Submit acts as a stop request instead, before any
// payload validation, so the send key doubles as the stop key even on
// an empty input line; the caller keeps its input text.
func (c *Controller) Submit(p api.Payload) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.Stop()
		return nil
	}

	if err := p.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}

	user := models.NewMessage(models.RoleUser, p.Raw())
	user.Attachment = p.Attachment
	c.messages = append(c.messages, user)

	ctx, cancel := context.WithCancel(context.Background())
	ex := &exchange{cancel: cancel, finished: make(chan struct{})}
	c.active = ex
	chatID := c.chatID
	start := stateForStart(chatID)
	c.setStateLocked(start)
	c.mu.Unlock()

	c.emit(MessageEvent{Message: user})
	c.emit(StateEvent{State: start})

	c.abort.Arm(cancel, func(ctx context.Context) error {
		id := c.ChatID()
		if id == "" {
			return nil
		}
		return c.backend.NotifyAbort(ctx, id)
	})

	go c.run(ctx, ex, chatID, p)
	return nil
}

func stateForStart(chatID string) State {
	if chatID == "" {
		return StateCreatingChat
	}
	return StateAwaitingStream
}

// Stop cancels the active exchange. No-op when idle or within the
// cancel cooldown.
func (c *Controller) Stop() bool {
	return c.abort.Cancel()
}

// NewChat clears the session for a fresh conversation. The active
// exchange, if any, is cancelled first.
func (c *Controller) NewChat() {
	c.Stop()
	c.waitActive()

	c.mu.Lock()
	c.chatID = ""
	c.messages = nil
	c.setStateLocked(StateIdle)
	c.mu.Unlock()

	c.emit(ChatEvent{ChatID: ""})
}

// LoadChat replaces the session with a stored chat's transcript.
// Messages are marked historical so thinking blocks render collapsed.
func (c *Controller) LoadChat(ctx context.Context, chatID string) error {
	c.Stop()
	c.waitActive()

	details, err := c.backend.FetchChat(ctx, chatID)
	if err != nil {
		return err
	}

	msgs := make([]models.Message, 0, len(details.Messages))
	for _, m := range details.Messages {
		msg := models.Message{
			ID:         m.ID,
			Role:       m.Role,
			Raw:        models.ResolveRaw(m.Content),
			CreatedAt:  m.CreatedAt,
			Historical: true,
		}
		if msg.ID == "" {
			msg = models.NewMessage(m.Role, msg.Raw)
			msg.CreatedAt = m.CreatedAt
			msg.Historical = true
		}
		msgs = append(msgs, msg)
	}

	c.mu.Lock()
	c.chatID = details.ID
	c.messages = msgs
	c.setStateLocked(StateIdle)
	c.mu.Unlock()

	c.emit(ChatEvent{ChatID: details.ID})
	return nil
}

// Close cancels any active exchange and closes the event channel.
func (c *Controller) Close() {
	c.Stop()
	c.waitActive()
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.events)
	})
}

// run executes one exchange to completion. It is the only writer of the
// assistant message it creates.
func (c *Controller) run(ctx context.Context, ex *exchange, chatID string, p api.Payload) {
	defer close(ex.finished)
	defer c.finish(ex)

	stream, err := c.openStream(ctx, chatID, p)
	if err != nil {
		if apperrors.IsCancellation(err) || c.abort.Cancelled() {
			return
		}
		c.failSetup(err)
		return
	}
	defer stream.Close()

	c.setState(StateStreaming)

	assistant := models.NewMessage(models.RoleAssistant, models.RawContent{Kind: models.RawPlainText})
	ex.assistantID = assistant.ID
	c.appendMessage(assistant)

	var text string
	for {
		delta, err := stream.Next(ctx)
		if delta != "" {
			text += delta
			c.updateAssistant(ex.assistantID, text)
			c.emit(DeltaEvent{MessageID: ex.assistantID, Delta: delta, Text: text})
		}
		if err == nil {
			continue
		}

		switch {
		case err == io.EOF:
			c.persistAssistant(text)
			return
		case apperrors.IsCancellation(err) || c.abort.Cancelled():
			text += stoppedSuffix
			c.updateAssistant(ex.assistantID, text)
			c.emit(DeltaEvent{MessageID: ex.assistantID, Delta: stoppedSuffix, Text: text})
			c.persistAssistant(text)
			return
		default:
			// Keep whatever streamed before the failure, and leave a
			// trace of the truncation in the transcript itself.
			logging.L().Error("stream failed", zap.Error(err))
			suffix := fmt.Sprintf("\nError reading stream: %v", err)
			text += suffix
			c.updateAssistant(ex.assistantID, text)
			c.emit(DeltaEvent{MessageID: ex.assistantID, Delta: suffix, Text: text})
			c.emit(ErrorEvent{Err: err})
			return
		}
	}
}

func (c *Controller) openStream(ctx context.Context, chatID string, p api.Payload) (Stream, error) {
	if chatID != "" {
		return c.backend.OpenChatStream(ctx, chatID, p)
	}

	stream, newID, err := c.backend.OpenNewChatStream(ctx, p)
	if err != nil {
		if !combinedUnavailable(err) {
			return nil, err
		}
		// Older backends have no combined create-and-stream endpoint;
		// create the chat first, then stream into it.
		newID, err = c.backend.CreateChat(ctx, p)
		if err != nil {
			return nil, err
		}
		stream, err = c.backend.OpenChatStream(ctx, newID, p)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.chatID = newID
	c.mu.Unlock()
	c.emit(ChatEvent{ChatID: newID})

	return stream, nil
}

// combinedUnavailable reports whether the combined create-and-stream
// endpoint does not exist on this backend.
func combinedUnavailable(err error) bool {
	status := apperrors.GetHTTPStatus(err)
	return status == 404 || status == 405
}

// failSetup reports an exchange that never produced a stream: the user
// message stays, and a system message explains what happened.
func (c *Controller) failSetup(err error) {
	logging.L().Error("exchange setup failed", zap.Error(err))

	note := models.NewMessage(models.RoleSystem, models.RawContent{
		Kind: models.RawPlainText,
		Text: fmt.Sprintf("Failed to get a response: %v", err),
	})
	c.appendMessage(note)
	c.emit(ErrorEvent{Err: err})
}

// persistAssistant stores the assistant message once its stream ends,
// completed or cancelled, so the transcript survives reload. The
// backend does not store streamed responses on its own. Best effort
// only.
func (c *Controller) persistAssistant(text string) {
	chatID := c.ChatID()
	if chatID == "" || strings.TrimSpace(text) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := c.backend.PersistMessage(ctx, chatID, text, models.RoleAssistant); err != nil {
		logging.L().Warn("failed to persist assistant message",
			zap.String("chat_id", chatID), zap.Error(err))
	}
}

// finish closes out the exchange regardless of how run exited.
func (c *Controller) finish(ex *exchange) {
	aborted := c.abort.Cancelled()
	c.abort.Disarm()
	ex.cancel()

	c.setState(StateFinalizing)

	c.mu.Lock()
	c.active = nil
	c.setStateLocked(StateIdle)
	c.mu.Unlock()
	c.emit(StateEvent{State: StateIdle})

	c.emit(DoneEvent{Aborted: aborted})
}

func (c *Controller) waitActive() {
	c.mu.Lock()
	ex := c.active
	c.mu.Unlock()
	if ex != nil {
		<-ex.finished
	}
}

func (c *Controller) appendMessage(m models.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
	c.emit(MessageEvent{Message: m})
}

// updateAssistant rewrites the accumulated text of the streaming
// message in the transcript snapshot.
func (c *Controller) updateAssistant(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			c.messages[i].Raw = models.RawContent{Kind: models.RawPlainText, Text: text}
			return
		}
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
	c.emit(StateEvent{State: s})
}

// setStateLocked changes state without emitting; callers emit after
// releasing the lock.
func (c *Controller) setStateLocked(s State) {
	c.state = s
}

// emit delivers an event unless the controller is shut down.
func (c *Controller) emit(ev Event) {
	select {
	case <-c.done:
	case c.events <- ev:
	}
}
