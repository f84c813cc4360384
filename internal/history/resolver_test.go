package history

import (
	"strings"
	"testing"
	"time"

	"github.com/diogo/orbchat/internal/models"
)

func resolverFixture(t *testing.T) (*Resolver, *Store) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	msgs := func(text string) []models.Message {
		return []models.Message{{
			Role: models.RoleUser,
			Raw:  models.RawContent{Kind: models.RawPlainText, Text: text},
		}}
	}

	// chat-zebra is the oldest, chat-apple the most recent
	store.CacheChat("chat-zebra", "Zebra patterns", "", msgs("zebras"))
	time.Sleep(10 * time.Millisecond)
	store.CacheChat("chat-mango", "Mango recipes", "", msgs("mangoes"))
	time.Sleep(10 * time.Millisecond)
	store.CacheChat("chat-apple", "Apple pie", "", msgs("apples"))

	return NewResolver(store), store
}

func TestResolver_Aliases(t *testing.T) {
	r, _ := resolverFixture(t)

	tests := []struct {
		ref  string
		want string
	}{
		{"@last", "chat-apple"},
		{"@LAST", "chat-apple"},
		{"@first", "chat-zebra"},
		{"1", "chat-apple"},
		{"3", "chat-zebra"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolver_IndexOutOfRange(t *testing.T) {
	r, _ := resolverFixture(t)

	for _, ref := range []string{"0", "4", "-1"} {
		if _, err := r.Resolve(ref); err == nil {
			t.Errorf("Resolve(%q) succeeded, want out-of-range error", ref)
		}
	}
}

func TestResolver_ExactID(t *testing.T) {
	r, _ := resolverFixture(t)

	got, err := r.Resolve("chat-mango")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "chat-mango" {
		t.Errorf("got %s", got)
	}
}

func TestResolver_IDPrefix(t *testing.T) {
	r, _ := resolverFixture(t)

	got, err := r.Resolve("chat-ze")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "chat-zebra" {
		t.Errorf("got %s", got)
	}

	// "chat-" prefixes all three, so it is not unique; title matching
	// does not rescue it either
	if _, err := r.Resolve("chat-"); err == nil {
		t.Error("expected error for ambiguous prefix")
	}
}

func TestResolver_TitleSubstring(t *testing.T) {
	r, _ := resolverFixture(t)

	got, err := r.Resolve("pie")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "chat-apple" {
		t.Errorf("got %s", got)
	}

	// Case-insensitive
	got, err = r.Resolve("MANGO")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "chat-mango" {
		t.Errorf("got %s", got)
	}
}

func TestResolver_AmbiguousTitle(t *testing.T) {
	r, store := resolverFixture(t)

	store.UpdateTitle("chat-zebra", "Recipes for zebras")

	// "recipes" now matches two titles
	_, err := r.Resolve("recipes")
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !strings.Contains(err.Error(), "multiple") {
		t.Errorf("error = %v", err)
	}
}

func TestResolver_EmptyStore(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	r := NewResolver(store)

	if _, err := r.Resolve("@last"); err == nil {
		t.Error("expected error with no conversations")
	}
}

func TestResolver_ResolveWithInfo(t *testing.T) {
	r, _ := resolverFixture(t)

	conv, err := r.ResolveWithInfo("@last")
	if err != nil {
		t.Fatalf("ResolveWithInfo: %v", err)
	}
	if conv.ID != "chat-apple" || conv.Title != "Apple pie" {
		t.Errorf("conv = %+v", conv)
	}
}
