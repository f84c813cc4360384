// Package parse derives the renderable view of a message from its raw
// accumulated text. It runs after every stream delta, so it operates on
// partial text as happily as on final text.
package parse

import (
	"fmt"
	"strings"
)

// Thinking tags come in two spellings; both delimit the same thing.
var (
	openTags  = []string{"<thinking>", "<think>"}
	closeTags = []string{"</thinking>", "</think>"}
)

// ThinkingBlock is one completed model aside.
type ThinkingBlock struct {
	ID   string
	Text string
	// IsOpen is the expand/collapse state for rendering. Blocks start
	// collapsed; the UI owns toggling.
	IsOpen bool
}

// extractThinking scans text left to right for tag pairs. Complete pairs
// become blocks; a trailing unclosed opening tag marks the tail as
// thinking-in-progress. Text outside tag spans is returned in document
// order. The two spellings are interchangeable, including mismatched
// open/close pairs.
func extractThinking(text string) (visible string, blocks []ThinkingBlock, inProgress string, thinking bool) {
	var sb strings.Builder
	pos := 0

	for {
		openIdx, openLen := nextTag(text, pos, openTags)
		if openIdx < 0 {
			sb.WriteString(text[pos:])
			break
		}

		sb.WriteString(text[pos:openIdx])
		contentStart := openIdx + openLen

		closeIdx, closeLen := nextTag(text, contentStart, closeTags)
		if closeIdx < 0 {
			// Unclosed tag: the span anchors at the last opening tag,
			// so earlier unmatched opens stay visible as literal text.
			lastIdx, lastLen := lastTag(text, openIdx, openTags)
			sb.WriteString(text[openIdx:lastIdx])
			inProgress = strings.TrimSpace(text[lastIdx+lastLen:])
			thinking = true
			break
		}

		blocks = append(blocks, ThinkingBlock{
			ID:   fmt.Sprintf("thinking-%d", len(blocks)),
			Text: strings.TrimSpace(text[contentStart:closeIdx]),
		})
		pos = closeIdx + closeLen
	}

	return sb.String(), blocks, inProgress, thinking
}

// nextTag returns the earliest occurrence of any tag at or after from.
func nextTag(text string, from int, tags []string) (idx, length int) {
	idx = -1
	for _, tag := range tags {
		i := strings.Index(text[from:], tag)
		if i < 0 {
			continue
		}
		i += from
		if idx < 0 || i < idx {
			idx = i
			length = len(tag)
		}
	}
	return idx, length
}

// lastTag returns the rightmost occurrence of any tag at or after from.
func lastTag(text string, from int, tags []string) (idx, length int) {
	idx = -1
	for _, tag := range tags {
		i := strings.LastIndex(text[from:], tag)
		if i < 0 {
			continue
		}
		i += from
		if i > idx {
			idx = i
			length = len(tag)
		}
	}
	return idx, length
}
