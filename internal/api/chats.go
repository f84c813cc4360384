package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apperrors "github.com/diogo/orbchat/internal/errors"
	"github.com/diogo/orbchat/internal/models"
)

// ChatSummary is one row in the chat list.
type ChatSummary struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

// ChatDetails is a full chat with its transcript.
type ChatDetails struct {
	ID       string
	Title    string
	Messages []ChatMessage
}

// ChatMessage is one stored message as the backend returns it. Content
// is the raw stored string; models.ResolveRaw classifies it.
type ChatMessage struct {
	ID        string
	Role      string
	Content   string
	CreatedAt time.Time
}

// CreateChat creates a chat seeded with the first user message and
// returns the new chat id.
func (c *Client) CreateChat(ctx context.Context, p Payload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	contentStr, err := p.persistBody()
	if err != nil {
		return "", fmt.Errorf("failed to encode content: %w", err)
	}
	contentType := "text/plain"
	if p.IsMultimodal() {
		contentType = "multimodal"
	}

	body, err := json.Marshal(map[string]string{
		"role":        models.RoleUser,
		"contentType": contentType,
		"content":     contentStr,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.routes.CreateChat()
	req, err := c.newRequest(ctx, fhttp.MethodPost, endpoint, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}

	data, err := c.readJSON(req)
	if err != nil {
		return "", err
	}

	id := firstString(gjson.ParseBytes(data), "result.id", "id", "chatId")
	if id == "" {
		return "", apperrors.NewAPIError(200, endpoint, "create response missing chat id")
	}
	return id, nil
}

// PersistMessage stores a message in a chat's transcript. Streamed
// responses exist only client-side until saved through this endpoint,
// so callers save the assistant message when its stream ends.
func (c *Client) PersistMessage(ctx context.Context, chatID, content, role string) error {
	body, err := json.Marshal(map[string]string{
		"content": content,
		"role":    role,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := c.newRequest(ctx, fhttp.MethodPost, c.routes.Messages(chatID), bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	return nil
}

// NotifyAbort tells the backend to stop generating for a chat. Callers
// treat failures as advisory; the client-side cancel already happened.
func (c *Client) NotifyAbort(ctx context.Context, chatID string) error {
	req, err := c.newRequest(ctx, fhttp.MethodPost, c.routes.Abort(chatID), nil, "")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	return nil
}

// FetchChat retrieves a chat and its messages.
func (c *Client) FetchChat(ctx context.Context, chatID string) (*ChatDetails, error) {
	req, err := c.newRequest(ctx, fhttp.MethodGet, c.routes.Chat(chatID), nil, "")
	if err != nil {
		return nil, err
	}

	data, err := c.readJSON(req)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	if result := root.Get("result"); result.Exists() {
		root = result
	}

	details := &ChatDetails{
		ID:    firstString(root, "id", "chatId"),
		Title: root.Get("title").String(),
	}
	if details.ID == "" {
		details.ID = chatID
	}

	root.Get("messages").ForEach(func(_, msg gjson.Result) bool {
		details.Messages = append(details.Messages, ChatMessage{
			ID:        msg.Get("id").String(),
			Role:      msg.Get("role").String(),
			Content:   msg.Get("content").String(),
			CreatedAt: parseTime(firstString(msg, "createdAt", "timestamp")),
		})
		return true
	})

	return details, nil
}

// FetchChats lists all chats, newest first as the backend orders them.
func (c *Client) FetchChats(ctx context.Context) ([]ChatSummary, error) {
	req, err := c.newRequest(ctx, fhttp.MethodGet, c.routes.Chats(), nil, "")
	if err != nil {
		return nil, err
	}

	data, err := c.readJSON(req)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	if result := root.Get("result"); result.Exists() {
		root = result
	}

	var chats []ChatSummary
	root.ForEach(func(_, chat gjson.Result) bool {
		chats = append(chats, ChatSummary{
			ID:        firstString(chat, "id", "chatId"),
			Title:     chat.Get("title").String(),
			UpdatedAt: parseTime(firstString(chat, "updatedAt", "createdAt")),
		})
		return true
	})
	return chats, nil
}

// DeleteChat removes a chat and its transcript.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	req, err := c.newRequest(ctx, fhttp.MethodDelete, c.routes.Chat(chatID), nil, "")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	return nil
}

// FetchCapabilities retrieves the available LLMs and their supported
// content types. Falls back to the built-in registry on decode trouble
// so model selection always has something to offer.
func (c *Client) FetchCapabilities(ctx context.Context) ([]models.LLM, error) {
	req, err := c.newRequest(ctx, fhttp.MethodGet, c.routes.Capabilities(), nil, "")
	if err != nil {
		return nil, err
	}

	data, err := c.readJSON(req)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	if result := root.Get("result"); result.Exists() {
		root = result
	}
	if !root.IsArray() {
		return models.AllLLMs(), nil
	}

	var llms []models.LLM
	root.ForEach(func(_, entry gjson.Result) bool {
		llm := models.LLM{
			ID:       firstString(entry, "id", "llmId"),
			Name:     entry.Get("name").String(),
			Disabled: entry.Get("disabled").Bool(),
			Capabilities: models.Capabilities{
				Text:  capFlag(entry, "text", "supportsText"),
				Image: capFlag(entry, "image", "supportsImage"),
				PDF:   capFlag(entry, "pdf", "supportsPdf"),
				Tools: capFlag(entry, "tools", "supportsTools"),
			},
		}
		if llm.ID != "" {
			llms = append(llms, llm)
		}
		return true
	})

	if len(llms) == 0 {
		return models.AllLLMs(), nil
	}
	return llms, nil
}

// firstString returns the first non-empty string among the given paths.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// capFlag probes both response shapes: a nested capabilities object and
// flat supportsX booleans.
func capFlag(entry gjson.Result, nested, flat string) bool {
	if v := entry.Get("capabilities." + nested); v.Exists() {
		return v.Bool()
	}
	return entry.Get(flat).Bool()
}

// parseTime parses backend timestamps, tolerating both RFC 3339 and
// epoch milliseconds. Zero time when unparseable.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if ms := gjson.Parse(s); ms.Type == gjson.Number {
		return time.UnixMilli(ms.Int())
	}
	return time.Time{}
}
