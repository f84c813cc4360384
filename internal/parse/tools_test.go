package parse

import (
	"reflect"
	"testing"
)

func TestExtractToolEvents(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantVisible string
		wantEvents  []string
	}{
		{
			name:        "no annotations",
			text:        "plain text with [a bracket] inside",
			wantVisible: "plain text with [a bracket] inside",
		},
		{
			name:        "single calling annotation",
			text:        "before [Calling tool: search] after",
			wantVisible: "before  after",
			wantEvents:  []string{"[Calling tool: search]"},
		},
		{
			name:        "nested brackets inside annotation",
			text:        "x[Calling tool: search with args [1, 2]]y",
			wantVisible: "xy",
			wantEvents:  []string{"[Calling tool: search with args [1, 2]]"},
		},
		{
			name:        "unterminated annotation extends to end",
			text:        "result [Executing tools: fetch",
			wantVisible: "result",
			wantEvents:  []string{"[Executing tools: fetch"},
		},
		{
			name:        "consecutive duplicates collapse",
			text:        "[Calling tool: a][Calling tool: a][Calling tool: a]",
			wantVisible: "",
			wantEvents:  []string{"[Calling tool: a]"},
		},
		{
			name:        "non-consecutive duplicates kept",
			text:        "[Calling tool: a][Tool completed][Calling tool: a]",
			wantVisible: "",
			wantEvents:  []string{"[Calling tool: a]", "[Tool completed]", "[Calling tool: a]"},
		},
		{
			name:        "all lead phrases recognized",
			text:        "[Calling tool: x][Executing tools][Tool completed][Tool failed: y]",
			wantVisible: "",
			wantEvents:  []string{"[Calling tool: x]", "[Executing tools]", "[Tool completed]", "[Tool failed: y]"},
		},
		{
			name:        "newline runs collapse after removal",
			text:        "first\n\n[Tool completed]\n\n\nsecond",
			wantVisible: "first\n\nsecond",
			wantEvents:  []string{"[Tool completed]"},
		},
		{
			name:        "newline runs untouched without annotations",
			text:        "first\n\n\n\nsecond",
			wantVisible: "first\n\n\n\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, events := extractToolEvents(tt.text)

			if visible != tt.wantVisible {
				t.Errorf("visible = %q, want %q", visible, tt.wantVisible)
			}
			if !reflect.DeepEqual(events, tt.wantEvents) {
				t.Errorf("events = %v, want %v", events, tt.wantEvents)
			}
		})
	}
}

func TestExtractToolEventsIdempotent(t *testing.T) {
	text := "a [Calling tool: search [nested]] b [Tool completed] c"

	visible1, events1 := extractToolEvents(text)
	visible2, events2 := extractToolEvents(visible1)

	if visible2 != visible1 {
		t.Errorf("second pass changed visible: %q -> %q", visible1, visible2)
	}
	if len(events2) != 0 {
		t.Errorf("second pass found events: %v", events2)
	}
	if len(events1) != 2 {
		t.Errorf("first pass events = %v", events1)
	}
}

func TestToolPhaseDone(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   bool
	}{
		{"no events", nil, false},
		{"calling only", []string{"[Calling tool: a]"}, false},
		{"completed last", []string{"[Calling tool: a]", "[Tool completed]"}, true},
		{"completed case-insensitive", []string{"[TOOL COMPLETED in 2s]"}, true},
		{"completed not last", []string{"[Tool completed]", "[Calling tool: b]"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToolPhaseDone(tt.events); got != tt.want {
				t.Errorf("ToolPhaseDone() = %v, want %v", got, tt.want)
			}
		})
	}
}
