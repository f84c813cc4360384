// Package models contains data types and constants for the Orb chat backend.
package models

import (
	"fmt"
	"net/url"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Routes builds backend endpoint URLs relative to a base URL.
// The path layout mirrors the Orb backend's REST surface.
type Routes struct {
	Base string
}

// CreateChat is the non-streaming chat creation endpoint.
func (r Routes) CreateChat() string {
	return r.Base + "/chats/create"
}

// NewChatStream creates a new text chat and streams the first response.
func (r Routes) NewChatStream(llmID string) string {
	return fmt.Sprintf("%s/chat-stream?llmId=%s", r.Base, url.QueryEscape(llmID))
}

// ChatStream streams a response in an existing chat.
func (r Routes) ChatStream(chatID, llmID string) string {
	return fmt.Sprintf("%s/chats/%s/message/stream?llmId=%s", r.Base, url.PathEscape(chatID), url.QueryEscape(llmID))
}

// NewMultimodalStream creates a new multimodal chat and streams the first response.
func (r Routes) NewMultimodalStream() string {
	return r.Base + "/create-stream-multimodal-chat"
}

// MultimodalStream streams a multimodal response in an existing chat.
func (r Routes) MultimodalStream() string {
	return r.Base + "/chat-stream-multimodal"
}

// Messages is the message persistence endpoint for a chat.
func (r Routes) Messages(chatID string) string {
	return fmt.Sprintf("%s/chats/%s/messages", r.Base, url.PathEscape(chatID))
}

// Abort notifies the backend that the in-flight exchange was cancelled.
func (r Routes) Abort(chatID string) string {
	return fmt.Sprintf("%s/chats/%s/abort", r.Base, url.PathEscape(chatID))
}

// Chat fetches a single chat with its messages.
func (r Routes) Chat(chatID string) string {
	return fmt.Sprintf("%s/chats/%s", r.Base, url.PathEscape(chatID))
}

// Chats lists all chats.
func (r Routes) Chats() string {
	return r.Base + "/chats"
}

// Capabilities lists available LLMs and what they support.
func (r Routes) Capabilities() string {
	return r.Base + "/llms/capabilities"
}

// HeaderChatID carries the chat id created by a new-chat streaming call.
// The body of those responses is the raw token stream, so the id travels
// out-of-band in response metadata.
const HeaderChatID = "X-Chat-Id"

// Capabilities describes what content types an LLM accepts.
type Capabilities struct {
	Text  bool `json:"text"`
	Image bool `json:"image"`
	PDF   bool `json:"pdf"`
	Tools bool `json:"tools"`
}

// LLM identifies a selectable backend model.
type LLM struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Disabled     bool         `json:"disabled,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

// Default LLMs, used until the capabilities endpoint has been consulted.
var (
	LLMStandard = LLM{
		ID:           "1",
		Name:         "standard",
		Capabilities: Capabilities{Text: true, Image: true, PDF: true},
	}

	LLMThinking = LLM{
		ID:           "2",
		Name:         "thinking",
		Capabilities: Capabilities{Text: true, Tools: true},
	}

	DefaultLLM = LLMStandard
)

// AllLLMs returns the built-in model registry.
func AllLLMs() []LLM {
	return []LLM{LLMStandard, LLMThinking}
}

// LLMFromID returns a model from the built-in registry, or DefaultLLM
// when the id is unknown.
func LLMFromID(id string) LLM {
	for _, m := range AllLLMs() {
		if m.ID == id {
			return m
		}
	}
	return DefaultLLM
}

// DefaultHeaders returns the headers sent with every backend request.
func DefaultHeaders(token string) map[string]string {
	h := map[string]string{
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
		"User-Agent":      "orbchat/" + Version,
	}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// Version is set at build time.
var Version = "0.1.0"
