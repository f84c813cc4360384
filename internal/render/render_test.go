package render

import (
	"strings"
	"testing"

	"github.com/diogo/orbchat/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji {
		t.Error("expected EnableEmoji=true")
	}
	if !opts.PreserveNewLines {
		t.Error("expected PreserveNewLines=true")
	}
}

func TestOptionsWithWidth(t *testing.T) {
	opts := DefaultOptions().WithWidth(120)

	if opts.Width != 120 {
		t.Errorf("expected Width=120, got %d", opts.Width)
	}
	// Verify other options are preserved
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
}

func TestOptionsWithStyle(t *testing.T) {
	opts := DefaultOptions().WithStyle("light")

	if opts.Style != "light" {
		t.Errorf("expected Style='light', got %s", opts.Style)
	}
}

func TestFromConfig(t *testing.T) {
	mc := config.MarkdownConfig{
		Style:            "light",
		EnableEmoji:      false,
		PreserveNewLines: true,
	}

	opts := FromConfig(mc)

	if opts.Style != "light" {
		t.Errorf("Style = %s", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("EnableEmoji = true")
	}
	if !opts.PreserveNewLines {
		t.Error("PreserveNewLines = false")
	}

	// Empty style falls back to the default
	opts = FromConfig(config.MarkdownConfig{})
	if opts.Style != "dark" {
		t.Errorf("Style = %s", opts.Style)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nSome **bold** text", DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}

	if !strings.Contains(out, "Title") {
		t.Error("output missing heading text")
	}
	if !strings.Contains(out, "bold") {
		t.Error("output missing body text")
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	content := "This is a fairly long line of text that should wrap when the renderer width is small"

	out, err := MarkdownWithWidth(content, 30)
	if err != nil {
		t.Fatalf("MarkdownWithWidth failed: %v", err)
	}

	for _, line := range strings.Split(out, "\n") {
		// Allow some slack for ANSI escapes and padding
		if len(stripANSI(line)) > 40 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func TestRendererPoolReuse(t *testing.T) {
	ClearCache()

	opts := DefaultOptions()
	if _, err := Markdown("first", opts); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if _, err := Markdown("second", opts); err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	if CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1 pool for identical options", CacheSize())
	}

	if _, err := Markdown("third", opts.WithWidth(100)); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("CacheSize = %d, want a second pool for new width", CacheSize())
	}

	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("CacheSize = %d after ClearCache", CacheSize())
	}
}

func TestMarkdownConcurrent(t *testing.T) {
	ClearCache()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := Markdown("## Heading\n\n- item one\n- item two", DefaultOptions())
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Markdown: %v", err)
		}
	}
}
