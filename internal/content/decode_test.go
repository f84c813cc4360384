package content

import (
	"testing"

	"github.com/diogo/orbchat/internal/models"
)

func TestDecodeStructuredArray(t *testing.T) {
	items := DecodeString(`[{"type":"text","text":"hi"},{"type":"image_url","image_url":{"url":"data:image/png;base64,QUJD","detail":"auto"}}]`)

	if len(items) != 2 {
		t.Fatalf("got %d items: %v", len(items), items)
	}
	if items[0].Type != models.ContentText || items[0].Text != "hi" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Type != models.ContentImageURL || items[1].URL != "data:image/png;base64,QUJD" {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestDecodeWrappedObject(t *testing.T) {
	items := DecodeString(`{"content":[{"type":"text","text":"wrapped"}]}`)

	if len(items) != 1 || items[0].Text != "wrapped" {
		t.Errorf("items = %v", items)
	}
}

func TestDecodeWrongKeyNesting(t *testing.T) {
	// file_url item carrying its payload under image_url, seen in old
	// history rows.
	items := DecodeString(`[{"type":"file_url","image_url":{"url":"data:application/pdf;base64,QUJD"}}]`)

	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Type != models.ContentFileURL {
		t.Errorf("type = %q", items[0].Type)
	}
	if items[0].URL != "data:application/pdf;base64,QUJD" {
		t.Errorf("url = %q", items[0].URL)
	}
	if items[0].Detail != "auto" {
		t.Errorf("detail = %q", items[0].Detail)
	}
}

func TestDecodeLegacyDump(t *testing.T) {
	s := "[{type=text, text=what is this}, {type=image_url, image_url={url=data:image/png;base64,QUJD, detail=auto}}]"

	items := DecodeString(s)

	if len(items) != 2 {
		t.Fatalf("got %d items: %v", len(items), items)
	}
	if items[0].Text != "what is this" {
		t.Errorf("text = %q", items[0].Text)
	}
	if items[1].Type != models.ContentImageURL || items[1].URL != "data:image/png;base64,QUJD" {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestDecodeLegacyPlaceholder(t *testing.T) {
	items := DecodeString("Multimodal content: [java.util.ArrayList@1a2b3c]")

	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Text != legacyPlaceholder {
		t.Errorf("text = %q", items[0].Text)
	}
}

func TestDecodeIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"plain prose",
		"[truncated json",
		`{"content": "not an array"}`,
		"{type=}",
	}

	for _, in := range inputs {
		items := DecodeString(in)
		if items == nil {
			t.Errorf("DecodeString(%q) = nil", in)
			continue
		}
		if len(items) != 1 || items[0].Text != in {
			// The verbatim fallback must not alter the input.
			if len(items) == 0 {
				t.Errorf("DecodeString(%q) = empty", in)
			}
		}
	}
}

func TestDecodePreStructuredItems(t *testing.T) {
	raw := models.RawFromItems([]models.ContentItem{models.TextItem("direct")})

	items := Decode(raw)

	if len(items) != 1 || items[0].Text != "direct" {
		t.Errorf("items = %v", items)
	}
	// Returned slice is a copy, not an alias of the input.
	items[0].Text = "mutated"
	if raw.Items[0].Text != "direct" {
		t.Error("Decode aliased the input slice")
	}
}

func TestDecodeUnknownTypeKeepsText(t *testing.T) {
	items := DecodeString(`[{"type":"audio","text":"transcript"},{"type":"audio"}]`)

	if len(items) != 1 || items[0].Text != "transcript" {
		t.Errorf("items = %v", items)
	}
}
