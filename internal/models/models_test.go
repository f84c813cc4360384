package models

import (
	"strings"
	"testing"
)

func TestClassifyMIME(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		fileName string
		want     MimeClass
	}{
		{"png", "image/png", "a.png", MimeImage},
		{"jpeg", "image/jpeg", "b.jpg", MimeImage},
		{"pdf by type", "application/pdf", "doc.pdf", MimePDF},
		{"pdf by extension", "application/octet-stream", "doc.PDF", MimePDF},
		{"text", "text/markdown", "notes.md", MimeText},
		{"other", "application/zip", "a.zip", MimeOther},
		{"empty", "", "mystery", MimeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMIME(tt.mimeType, tt.fileName); got != tt.want {
				t.Errorf("ClassifyMIME(%q, %q) = %q, want %q", tt.mimeType, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	r := Routes{Base: "https://orb.example.com/api"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"create chat", r.CreateChat(), "https://orb.example.com/api/chats/create"},
		{"new chat stream", r.NewChatStream("1"), "https://orb.example.com/api/chat-stream?llmId=1"},
		{"chat stream", r.ChatStream("chat-1", "2"), "https://orb.example.com/api/chats/chat-1/message/stream?llmId=2"},
		{"messages", r.Messages("chat-1"), "https://orb.example.com/api/chats/chat-1/messages"},
		{"abort", r.Abort("chat-1"), "https://orb.example.com/api/chats/chat-1/abort"},
		{"chat", r.Chat("chat-1"), "https://orb.example.com/api/chats/chat-1"},
		{"chats", r.Chats(), "https://orb.example.com/api/chats"},
		{"capabilities", r.Capabilities(), "https://orb.example.com/api/llms/capabilities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestRoutesEscapeChatID(t *testing.T) {
	r := Routes{Base: "http://localhost:8080"}

	got := r.Chat("weird/id")
	if strings.Contains(strings.TrimPrefix(got, "http://"), "//") {
		t.Errorf("unescaped id produced %q", got)
	}
}

func TestDefaultHeaders(t *testing.T) {
	h := DefaultHeaders("tok-123")
	if h["Authorization"] != "Bearer tok-123" {
		t.Errorf("Authorization = %q", h["Authorization"])
	}
	if !strings.HasPrefix(h["User-Agent"], "orbchat/") {
		t.Errorf("User-Agent = %q", h["User-Agent"])
	}

	h = DefaultHeaders("")
	if _, ok := h["Authorization"]; ok {
		t.Error("Authorization set without a token")
	}
}

func TestLLMFromID(t *testing.T) {
	if got := LLMFromID("2"); got.ID != "2" {
		t.Errorf("LLMFromID(2) = %+v", got)
	}
	if got := LLMFromID("unknown"); got.ID != DefaultLLM.ID {
		t.Errorf("LLMFromID(unknown) = %+v", got)
	}
}

func TestNewMessage(t *testing.T) {
	m := NewMessage(RoleUser, RawContent{Kind: RawPlainText, Text: "hi"})

	if m.ID == "" {
		t.Error("ID is empty")
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
	if m.Historical {
		t.Error("new messages are not historical")
	}

	other := NewMessage(RoleUser, RawContent{})
	if other.ID == m.ID {
		t.Error("ids are not unique")
	}
}
