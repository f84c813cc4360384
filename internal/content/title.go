package content

import (
	"strings"
	"unicode/utf8"

	"github.com/diogo/orbchat/internal/models"
)

// DefaultTitleLength bounds chat titles derived from message content.
const DefaultTitleLength = 50

// Title derives a short chat title from raw message content: the first
// text item, truncated, or an icon label describing attached media when
// no text exists.
func Title(raw models.RawContent, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultTitleLength
	}

	items := Decode(raw)

	for _, item := range items {
		if item.Type != models.ContentText {
			continue
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		return truncate(text, maxLen)
	}

	for _, item := range items {
		switch item.Type {
		case models.ContentImageURL:
			return "🖼️ Image"
		case models.ContentFileURL:
			return "📎 Attachment"
		}
	}

	return "New chat"
}

// truncate cuts at a rune boundary and appends an ellipsis.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
