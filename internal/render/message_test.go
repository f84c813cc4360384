package render

import (
	"strings"
	"testing"

	"github.com/diogo/orbchat/internal/models"
	"github.com/diogo/orbchat/internal/parse"
)

func messageOpts(showThinking, showTools bool) MessageOptions {
	return MessageOptions{
		Markdown:       DefaultOptions(),
		ShowThinking:   showThinking,
		ShowToolStatus: showTools,
	}
}

func TestMessageRenderOrder(t *testing.T) {
	view := parse.Parse(models.RawContent{
		Kind: models.RawPlainText,
		Text: "<thinking>plan</thinking>The answer is 42.",
	})
	view.MediaItems = []models.ContentItem{models.ImageItem("data:image/png;base64,QUJD")}

	out := Message(view, messageOpts(true, false))

	imageIdx := strings.Index(out, "[image]")
	thinkingIdx := strings.Index(out, "plan")
	textIdx := strings.Index(out, "answer")

	if imageIdx == -1 || thinkingIdx == -1 || textIdx == -1 {
		t.Fatalf("missing sections in output:\n%s", out)
	}
	if !(imageIdx < thinkingIdx && thinkingIdx < textIdx) {
		t.Errorf("sections out of order: image=%d thinking=%d text=%d", imageIdx, thinkingIdx, textIdx)
	}
}

func TestMessageCollapsedThinking(t *testing.T) {
	view := parse.Parse(models.RawContent{
		Kind: models.RawPlainText,
		Text: "<thinking>secret reasoning</thinking>visible",
	})

	out := Message(view, messageOpts(false, false))

	if strings.Contains(out, "secret reasoning") {
		t.Error("collapsed thinking block leaked its text")
	}
	if !strings.Contains(out, "hidden") {
		t.Error("no collapsed-thinking header")
	}
}

func TestMessageInProgressThinking(t *testing.T) {
	view := parse.Parse(models.RawContent{
		Kind: models.RawPlainText,
		Text: "<thinking>still working",
	})

	out := Message(view, messageOpts(false, false))

	if !strings.Contains(out, "Thinking...") {
		t.Error("no in-progress thinking header")
	}
	if !strings.Contains(out, "still working") {
		t.Error("in-progress thinking text missing")
	}
}

func TestMessageToolStatus(t *testing.T) {
	view := parse.Parse(models.RawContent{
		Kind: models.RawPlainText,
		Text: "checking [Calling tool: search]",
	})

	out := Message(view, messageOpts(false, true))
	if !strings.Contains(out, "[Calling tool: search]") {
		t.Errorf("tool status missing:\n%s", out)
	}

	// Completed tool phases render nothing
	done := parse.Parse(models.RawContent{
		Kind: models.RawPlainText,
		Text: "done [Tool completed]",
	})
	out = Message(done, messageOpts(false, true))
	if strings.Contains(out, "[Tool completed]") {
		t.Errorf("completed tool status should not render:\n%s", out)
	}
}

func TestMessageEmptyView(t *testing.T) {
	out := Message(&parse.View{}, messageOpts(true, true))

	if out != "" {
		t.Errorf("empty view rendered %q", out)
	}
}
