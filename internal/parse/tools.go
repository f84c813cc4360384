package parse

import (
	"regexp"
	"strings"
)

// Lead phrases that start a tool-status annotation. The scan only
// triggers on these, never on arbitrary bracketed text.
var toolLeads = []string{
	"[Calling tool:",
	"[Executing tools",
	"[Tool completed",
	"[Tool failed",
}

var (
	completedPattern = regexp.MustCompile(`(?i)tool completed`)
	newlineRuns      = regexp.MustCompile(`\n{3,}`)
)

// extractToolEvents removes tool-status annotations from text and
// collects them in order of appearance, collapsing consecutive
// duplicates. Annotations may nest bracketed content (embedded tool
// arguments), so the end of an annotation is found by bracket depth, not
// by the first ']'. An annotation still streaming in (no closing bracket
// yet) extends to end-of-text.
func extractToolEvents(text string) (visible string, events []string) {
	var sb strings.Builder
	pos := 0
	removed := false

	for {
		start := nextToolLead(text, pos)
		if start < 0 {
			sb.WriteString(text[pos:])
			break
		}

		sb.WriteString(text[pos:start])
		end := matchBrackets(text, start)

		event := strings.TrimSpace(text[start:end])
		if len(events) == 0 || events[len(events)-1] != event {
			events = append(events, event)
		}
		removed = true
		pos = end
	}

	visible = sb.String()
	if removed {
		visible = strings.TrimSpace(newlineRuns.ReplaceAllString(visible, "\n\n"))
	}
	return visible, events
}

// nextToolLead returns the earliest index at or after from where any
// lead phrase begins.
func nextToolLead(text string, from int) int {
	best := -1
	for _, lead := range toolLeads {
		i := strings.Index(text[from:], lead)
		if i < 0 {
			continue
		}
		i += from
		if best < 0 || i < best {
			best = i
		}
	}
	return best
}

// matchBrackets returns the index just past the ']' balancing the '[' at
// start, or len(text) when the stream has not delivered it yet.
func matchBrackets(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

// ToolPhaseDone reports whether the most recent tool event says the tool
// phase finished.
func ToolPhaseDone(events []string) bool {
	if len(events) == 0 {
		return false
	}
	return completedPattern.MatchString(events[len(events)-1])
}
