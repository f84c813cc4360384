package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diogo/orbchat/internal/models"
)

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if store == nil {
		t.Fatal("NewStore returned nil")
	}

	// Check that history directory was created
	historyDir := filepath.Join(tmpDir, "history")
	if _, err := os.Stat(historyDir); os.IsNotExist(err) {
		t.Error("history directory was not created")
	}
}

func testMessages() []models.Message {
	return []models.Message{
		{
			ID:        "m1",
			Role:      models.RoleUser,
			Raw:       models.RawContent{Kind: models.RawPlainText, Text: "How do channels work?"},
			CreatedAt: time.Now(),
		},
		{
			ID:        "m2",
			Role:      models.RoleAssistant,
			Raw:       models.RawContent{Kind: models.RawPlainText, Text: "A channel is a typed conduit."},
			CreatedAt: time.Now(),
		},
	}
}

func TestStore_CacheChat(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	if err := store.CacheChat("chat-1", "", "1", testMessages()); err != nil {
		t.Fatalf("CacheChat failed: %v", err)
	}

	conv, err := store.GetConversation("chat-1")
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}

	if conv.ID != "chat-1" {
		t.Errorf("ID = %s", conv.ID)
	}
	if conv.LLM != "1" {
		t.Errorf("LLM = %s", conv.LLM)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Content != "How do channels work?" {
		t.Errorf("Content = %s", conv.Messages[0].Content)
	}

	// Title derived from the first user message
	if conv.Title != "How do channels work?" {
		t.Errorf("Title = %s", conv.Title)
	}

	if conv.CreatedAt.IsZero() || conv.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestStore_CacheChatReplacesTranscript(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-1", "", "", testMessages())

	// Caching again with a longer transcript replaces, never appends
	msgs := append(testMessages(), models.Message{
		Role: models.RoleUser,
		Raw:  models.RawContent{Kind: models.RawPlainText, Text: "And buffered ones?"},
	})
	if err := store.CacheChat("chat-1", "", "", msgs); err != nil {
		t.Fatalf("CacheChat failed: %v", err)
	}

	conv, _ := store.GetConversation("chat-1")
	if len(conv.Messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(conv.Messages))
	}
}

func TestStore_CacheChatKeepsProvidedTitle(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-1", "Backend title", "", testMessages())

	conv, _ := store.GetConversation("chat-1")
	if conv.Title != "Backend title" {
		t.Errorf("Title = %s", conv.Title)
	}
}

func TestStore_GetConversationNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	_, err := store.GetConversation("nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent conversation")
	}
}

func TestStore_ListConversations(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-a", "First", "", testMessages())
	time.Sleep(10 * time.Millisecond)
	store.CacheChat("chat-b", "Second", "", testMessages())

	conversations, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}

	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}

	// Most recently updated first
	if conversations[0].ID != "chat-b" {
		t.Errorf("first conversation = %s, want chat-b", conversations[0].ID)
	}
}

func TestStore_ListConversationsSkipsCorrupted(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-ok", "Good", "", testMessages())

	badPath := filepath.Join(tmpDir, "history", "chat-bad.json")
	if err := os.WriteFile(badPath, []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("write corrupted file: %v", err)
	}

	conversations, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(conversations) != 1 || conversations[0].ID != "chat-ok" {
		t.Errorf("conversations = %v", conversations)
	}
}

func TestStore_DeleteConversation(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-1", "", "", testMessages())

	if err := store.DeleteConversation("chat-1"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	if _, err := store.GetConversation("chat-1"); err == nil {
		t.Error("conversation still exists after delete")
	}

	if err := store.DeleteConversation("chat-1"); err == nil {
		t.Error("expected error deleting nonexistent conversation")
	}
}

func TestStore_UpdateTitle(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-1", "Old", "", testMessages())

	if err := store.UpdateTitle("chat-1", "New title"); err != nil {
		t.Fatalf("UpdateTitle failed: %v", err)
	}

	conv, _ := store.GetConversation("chat-1")
	if conv.Title != "New title" {
		t.Errorf("Title = %s", conv.Title)
	}
}

func TestStore_ClearAll(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)

	store.CacheChat("chat-1", "", "", testMessages())
	store.CacheChat("chat-2", "", "", testMessages())

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	conversations, _ := store.ListConversations()
	if len(conversations) != 0 {
		t.Errorf("expected 0 conversations, got %d", len(conversations))
	}
}
