package models

import (
	"encoding/json"
	"testing"
)

func TestResolveRaw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RawKind
	}{
		{"plain prose", "hello there", RawPlainText},
		{"empty", "", RawPlainText},
		{"json array", `[{"type":"text","text":"a"}]`, RawStructuredItems},
		{"json object", `{"content":[]}`, RawStructuredItems},
		{"leading whitespace before bracket", `  [1]`, RawStructuredItems},
		{"legacy marker", "Multimodal content: [{type=text}]", RawLegacyDump},
		{"legacy key-value with image", "{type=image_url, image_url={url=x}}", RawLegacyDump},
		{"type= without media keys is prose", "set type=fast in config", RawPlainText},
		{"brackets mid-sentence are prose", "see [1] for details", RawPlainText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRaw(tt.input)
			if got.Kind != tt.want {
				t.Errorf("ResolveRaw(%q).Kind = %v, want %v", tt.input, got.Kind, tt.want)
			}
			if got.Text != tt.input {
				t.Errorf("ResolveRaw(%q).Text = %q", tt.input, got.Text)
			}
		})
	}
}

func TestContentItemJSONRoundTrip(t *testing.T) {
	items := []ContentItem{
		TextItem("hello"),
		ImageItem("data:image/png;base64,QUJD"),
		FileItem("data:application/pdf;base64,QUJD"),
	}

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back []ContentItem
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for i := range items {
		if back[i] != items[i] {
			t.Errorf("item %d = %+v, want %+v", i, back[i], items[i])
		}
	}
}

func TestContentItemUnmarshalWrongKey(t *testing.T) {
	var item ContentItem
	err := json.Unmarshal([]byte(`{"type":"file_url","image_url":{"url":"data:application/pdf;base64,QUJD","detail":"auto"}}`), &item)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if item.Type != ContentFileURL {
		t.Errorf("type = %q", item.Type)
	}
	if item.URL != "data:application/pdf;base64,QUJD" {
		t.Errorf("url = %q", item.URL)
	}
}

func TestRawContentString(t *testing.T) {
	raw := RawFromItems([]ContentItem{TextItem("a")})

	s := raw.String()

	if s != `[{"type":"text","text":"a"}]` {
		t.Errorf("String() = %q", s)
	}
}
