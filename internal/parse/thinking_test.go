package parse

import (
	"strings"
	"testing"
)

func TestExtractThinking(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantVisible    string
		wantBlocks     []string
		wantInProgress string
		wantThinking   bool
	}{
		{
			name:        "no tags",
			text:        "Hello world",
			wantVisible: "Hello world",
		},
		{
			name:        "single complete pair",
			text:        "<thinking>plan the answer</thinking>Here it is",
			wantVisible: "Here it is",
			wantBlocks:  []string{"plan the answer"},
		},
		{
			name:        "short spelling",
			text:        "<think>quick</think>done",
			wantVisible: "done",
			wantBlocks:  []string{"quick"},
		},
		{
			name:        "mismatched spellings still pair",
			text:        "<thinking>reasoning</think>answer",
			wantVisible: "answer",
			wantBlocks:  []string{"reasoning"},
		},
		{
			name:        "multiple pairs with interleaved text",
			text:        "a<thinking>one</thinking>b<think>two</think>c",
			wantVisible: "abc",
			wantBlocks:  []string{"one", "two"},
		},
		{
			name:           "unclosed tag marks tail as in progress",
			text:           "intro<thinking>still going",
			wantVisible:    "intro",
			wantInProgress: "still going",
			wantThinking:   true,
		},
		{
			name:           "unclosed tag after complete pair",
			text:           "<thinking>done</thinking>mid<think>more",
			wantVisible:    "mid",
			wantBlocks:     []string{"done"},
			wantInProgress: "more",
			wantThinking:   true,
		},
		{
			name:           "bare opening tag at end",
			text:           "text<thinking>",
			wantVisible:    "text",
			wantInProgress: "",
			wantThinking:   true,
		},
		{
			// With several unmatched opens only the last one starts the
			// in-progress span; earlier ones stay as literal text.
			name:           "doubled opening tag anchors at the last one",
			text:           "<think>a<think>b",
			wantVisible:    "<think>a",
			wantInProgress: "b",
			wantThinking:   true,
		},
		{
			name:           "mixed spellings anchor at the rightmost open",
			text:           "intro<thinking>a<think>tail",
			wantVisible:    "intro<thinking>a",
			wantInProgress: "tail",
			wantThinking:   true,
		},
		{
			name:        "block content is trimmed",
			text:        "<thinking>\n  padded  \n</thinking>x",
			wantVisible: "x",
			wantBlocks:  []string{"padded"},
		},
		{
			name:        "empty input",
			text:        "",
			wantVisible: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, blocks, inProgress, thinking := extractThinking(tt.text)

			if visible != tt.wantVisible {
				t.Errorf("visible = %q, want %q", visible, tt.wantVisible)
			}
			if len(blocks) != len(tt.wantBlocks) {
				t.Fatalf("got %d blocks, want %d", len(blocks), len(tt.wantBlocks))
			}
			for i, want := range tt.wantBlocks {
				if blocks[i].Text != want {
					t.Errorf("block %d = %q, want %q", i, blocks[i].Text, want)
				}
			}
			if inProgress != tt.wantInProgress {
				t.Errorf("inProgress = %q, want %q", inProgress, tt.wantInProgress)
			}
			if thinking != tt.wantThinking {
				t.Errorf("thinking = %v, want %v", thinking, tt.wantThinking)
			}
		})
	}
}

func TestExtractThinkingManyPairs(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("<think>t</think>v")
	}

	visible, blocks, _, thinking := extractThinking(sb.String())

	if len(blocks) != 50 {
		t.Errorf("got %d blocks, want 50", len(blocks))
	}
	if visible != strings.Repeat("v", 50) {
		t.Errorf("visible = %q", visible)
	}
	if thinking {
		t.Error("thinking = true, want false")
	}
}

func TestExtractThinkingBlockIDs(t *testing.T) {
	_, blocks, _, _ := extractThinking("<think>a</think><think>b</think>")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].ID != "thinking-0" || blocks[1].ID != "thinking-1" {
		t.Errorf("ids = %q, %q", blocks[0].ID, blocks[1].ID)
	}
	if blocks[0].IsOpen || blocks[1].IsOpen {
		t.Error("blocks should start collapsed")
	}
}
