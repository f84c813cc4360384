package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves user-friendly references to chat IDs
type Resolver struct {
	store *Store
}

// NewResolver creates a new alias resolver
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to a chat ID
//
// Supported references:
//   - "@last" - most recently updated chat
//   - "@first" - oldest chat in the list
//   - "1", "2", "3" - by index (1-based, from most recent)
//   - "substring" - fuzzy match on title (error if multiple matches)
//   - full or unique prefix of a chat ID
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	conversations, err := r.store.ListConversations()
	if err != nil {
		return "", fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(conversations) == 0 {
		return "", fmt.Errorf("no conversations found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		// Already sorted by UpdatedAt descending
		return conversations[0].ID, nil
	case "@first":
		return conversations[len(conversations)-1].ID, nil
	}

	// Handle numeric index (1-based)
	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(conversations) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(conversations))
		}
		return conversations[index-1].ID, nil
	}

	// Exact or unique-prefix ID match
	var idMatches []*Conversation
	for _, conv := range conversations {
		if conv.ID == ref {
			return conv.ID, nil
		}
		if strings.HasPrefix(conv.ID, ref) {
			idMatches = append(idMatches, conv)
		}
	}
	if len(idMatches) == 1 {
		return idMatches[0].ID, nil
	}

	// Substring match on title (case-insensitive)
	refLower := strings.ToLower(ref)
	var matches []*Conversation
	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), refLower) {
			matches = append(matches, conv)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no conversation matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		var titles []string
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("'%s'", m.Title))
		}
		return "", fmt.Errorf("multiple conversations match '%s': %s. Use ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}

// ResolveWithInfo resolves a reference and returns the conversation
func (r *Resolver) ResolveWithInfo(ref string) (*Conversation, error) {
	id, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}

	return r.store.GetConversation(id)
}

// ListAliases returns information about supported aliases
func ListAliases() string {
	return `Supported references:
  @last          Most recently updated chat
  @first         Oldest chat in the list
  1, 2, 3        By index (1-based, from most recent)
  "text"         Search by title substring
  <id prefix>    Full or unique prefix of a chat ID`
}
