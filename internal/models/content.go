package models

import (
	"encoding/json"
	"strings"
)

// ContentItem types
const (
	ContentText     = "text"
	ContentImageURL = "image_url"
	ContentFileURL  = "file_url"
)

// ContentItem is one typed unit of displayable content. Text items carry
// Text; image_url and file_url items carry URL and Detail.
type ContentItem struct {
	Type   string
	Text   string
	URL    string
	Detail string
}

// TextItem builds a text content item.
func TextItem(text string) ContentItem {
	return ContentItem{Type: ContentText, Text: text}
}

// ImageItem builds an image_url content item.
func ImageItem(url string) ContentItem {
	return ContentItem{Type: ContentImageURL, URL: url, Detail: "auto"}
}

// FileItem builds a file_url content item.
func FileItem(url string) ContentItem {
	return ContentItem{Type: ContentFileURL, URL: url, Detail: "auto"}
}

// IsMedia reports whether the item references an image or file payload.
func (c ContentItem) IsMedia() bool {
	return c.Type == ContentImageURL || c.Type == ContentFileURL
}

// wireURL is the nested {url, detail} object used on the wire.
type wireURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// wireItem is the wire representation of a ContentItem. The URL payload
// nests under a key named after the item type, matching what the backend
// persists.
type wireItem struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	ImageURL *wireURL `json:"image_url,omitempty"`
	FileURL  *wireURL `json:"file_url,omitempty"`
}

// MarshalJSON encodes the item in wire form.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	w := wireItem{Type: c.Type}
	switch c.Type {
	case ContentImageURL:
		w.ImageURL = &wireURL{URL: c.URL, Detail: c.Detail}
	case ContentFileURL:
		w.FileURL = &wireURL{URL: c.URL, Detail: c.Detail}
	default:
		w.Text = c.Text
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form. Items whose URL nests under the
// "wrong" key (a file_url item carrying image_url, seen in old history)
// are accepted.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Type = w.Type
	c.Text = w.Text
	if w.ImageURL != nil {
		c.URL = w.ImageURL.URL
		c.Detail = w.ImageURL.Detail
	}
	if w.FileURL != nil {
		c.URL = w.FileURL.URL
		c.Detail = w.FileURL.Detail
	}
	return nil
}

// RawKind discriminates the RawContent union.
type RawKind int

const (
	// RawPlainText is ordinary prose (possibly with thinking tags and
	// tool annotations inline).
	RawPlainText RawKind = iota
	// RawStructuredItems is a decoded multimodal content-item list, or a
	// string that looks like its JSON serialization.
	RawStructuredItems
	// RawLegacyDump is the equals-sign-delimited stringified-object dump
	// produced by older backend versions.
	RawLegacyDump
)

// RawContent is a message body as received: exactly one of the three
// kinds. The kind is resolved once at ingestion so downstream code
// pattern-matches instead of re-sniffing strings.
type RawContent struct {
	Kind  RawKind
	Text  string        // RawPlainText and RawLegacyDump; original string for RawStructuredItems parsed from text
	Items []ContentItem // RawStructuredItems only
}

// legacyMarker flags content the old backend serialized by toString'ing
// a structured payload.
const legacyMarker = "Multimodal content:"

// ResolveRaw classifies a string message body. It never fails; anything
// unrecognized is plain text.
func ResolveRaw(s string) RawContent {
	trimmed := strings.TrimSpace(s)
	if strings.Contains(s, legacyMarker) {
		return RawContent{Kind: RawLegacyDump, Text: s}
	}
	if strings.Contains(s, "type=") &&
		(strings.Contains(s, ContentImageURL) || strings.Contains(s, ContentFileURL)) {
		return RawContent{Kind: RawLegacyDump, Text: s}
	}
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return RawContent{Kind: RawStructuredItems, Text: s}
	}
	return RawContent{Kind: RawPlainText, Text: s}
}

// RawFromItems wraps an already-structured item list.
func RawFromItems(items []ContentItem) RawContent {
	return RawContent{Kind: RawStructuredItems, Items: items}
}

// String returns the original textual form when one exists.
func (r RawContent) String() string {
	if r.Text != "" || r.Items == nil {
		return r.Text
	}
	data, err := json.Marshal(r.Items)
	if err != nil {
		return ""
	}
	return string(data)
}
