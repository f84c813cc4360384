package parse

import (
	"strings"

	"github.com/diogo/orbchat/internal/content"
	"github.com/diogo/orbchat/internal/models"
)

// View is the derived, renderable form of a message. It is recomputed
// from the raw content on every delta and never mutated in place.
//
// Render order contract: MediaItems first, then the in-progress thinking
// block, then completed thinking blocks oldest-first, then VisibleText.
type View struct {
	MediaItems         []models.ContentItem
	InProgressThinking string
	IsThinking         bool
	ThinkingBlocks     []ThinkingBlock
	ToolEvents         []string
	VisibleText        string
}

// CurrentToolStatus returns the most recent tool event, or "".
func (v *View) CurrentToolStatus() string {
	if len(v.ToolEvents) == 0 {
		return ""
	}
	return v.ToolEvents[len(v.ToolEvents)-1]
}

// ToolPhaseDone reports whether the last tool event is a completion.
func (v *View) ToolPhaseDone() bool {
	return ToolPhaseDone(v.ToolEvents)
}

// Parse derives a View from raw message content. Structured and legacy
// content goes through content.Decode first; the thinking scan runs on
// the joined text, and tool-status extraction runs only on text outside
// thinking spans, so an annotation inside an open thinking block stays
// part of the thinking text.
//
// Parse never fails: undecodable content degrades to raw text.
func Parse(raw models.RawContent) *View {
	view := &View{}

	text := raw.Text
	if raw.Kind != models.RawPlainText {
		items := content.Decode(raw)
		var texts []string
		for _, item := range items {
			if item.IsMedia() {
				view.MediaItems = append(view.MediaItems, item)
			} else if item.Type == models.ContentText {
				texts = append(texts, item.Text)
			}
		}
		text = strings.Join(texts, "\n\n")
	}

	visible, blocks, inProgress, thinking := extractThinking(text)
	view.ThinkingBlocks = blocks
	view.InProgressThinking = inProgress
	view.IsThinking = thinking

	view.VisibleText, view.ToolEvents = extractToolEvents(visible)

	return view
}
