// Package content converts between wire/persisted message content and
// typed content-item lists.
//
// Persisted multimodal content arrives in four shapes: a structured item
// array, an object wrapping one, a JSON string, or the legacy
// equals-sign-delimited dump older backend versions produced by
// stringifying their internal payload. Decode tolerates all of them
// indefinitely; the dump format is a read-compatibility contract, not a
// bug to fix server-side.
package content

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/diogo/orbchat/internal/models"
)

// legacyPlaceholder stands in for payloads the old backend serialized
// beyond recovery.
const legacyPlaceholder = "📎 *This message contained files that cannot be displayed due to a data format issue*"

// Decode resolves raw message content into a content-item list. It is
// total: any input, including empty strings and truncated JSON, yields a
// non-nil result, worst case a single text item with the original string.
func Decode(raw models.RawContent) []models.ContentItem {
	// Tier 1: already structured
	if raw.Items != nil {
		out := make([]models.ContentItem, len(raw.Items))
		copy(out, raw.Items)
		return out
	}

	switch raw.Kind {
	case models.RawStructuredItems:
		if items, ok := itemsFromJSON(raw.Text); ok {
			return items
		}
	case models.RawLegacyDump:
		if items, ok := decodeLegacy(raw.Text); ok {
			return items
		}
	}

	// Last tier: the original string verbatim
	return []models.ContentItem{models.TextItem(raw.Text)}
}

// DecodeString is Decode over an unclassified string.
func DecodeString(s string) []models.ContentItem {
	return Decode(models.ResolveRaw(s))
}

// itemsFromJSON parses a JSON string as an item array, unwrapping a
// {content: [...]} object (tiers 2 and 3).
func itemsFromJSON(s string) ([]models.ContentItem, bool) {
	trimmed := strings.TrimSpace(s)
	if !gjson.Valid(trimmed) {
		return nil, false
	}

	parsed := gjson.Parse(trimmed)
	if parsed.IsObject() {
		inner := parsed.Get("content")
		if !inner.IsArray() {
			return nil, false
		}
		parsed = inner
	}
	if !parsed.IsArray() {
		return nil, false
	}

	items := itemsFromResult(parsed)
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// itemsFromResult converts a gjson array of wire items.
func itemsFromResult(arr gjson.Result) []models.ContentItem {
	var items []models.ContentItem
	arr.ForEach(func(_, v gjson.Result) bool {
		item, ok := itemFromResult(v)
		if ok {
			items = append(items, item)
		}
		return true
	})
	return items
}

// itemFromResult converts one wire item. The URL may nest under
// image_url/file_url objects, sit under the "wrong" key for its type, or
// appear as a bare url property; all forms occur in stored history.
func itemFromResult(v gjson.Result) (models.ContentItem, bool) {
	typ := v.Get("type").String()
	switch typ {
	case models.ContentText:
		return models.TextItem(v.Get("text").String()), true
	case models.ContentImageURL, models.ContentFileURL:
		url := firstString(v, "image_url.url", "file_url.url", "url")
		if url == "" {
			return models.ContentItem{}, false
		}
		detail := firstString(v, "image_url.detail", "file_url.detail", "detail")
		if detail == "" {
			detail = "auto"
		}
		return models.ContentItem{Type: typ, URL: url, Detail: detail}, true
	default:
		// Unknown item type: keep any text so no content is dropped
		if text := v.Get("text").String(); text != "" {
			return models.TextItem(text), true
		}
		return models.ContentItem{}, false
	}
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

// decodeLegacy handles tier 4: the malformed dump. Repair-then-parse
// first, independent regex extraction as the documented fallback.
func decodeLegacy(s string) ([]models.ContentItem, bool) {
	if strings.Contains(s, "Multimodal content:") && strings.Contains(s, "ArrayList") {
		return []models.ContentItem{models.TextItem(legacyPlaceholder)}, true
	}

	if repaired, err := RepairDump(s); err == nil {
		data, merr := json.Marshal(repaired)
		if merr == nil {
			if items, ok := itemsFromJSON(string(data)); ok {
				return items, true
			}
		}
	}

	if items := extractByPattern(s); len(items) > 0 {
		return items, true
	}
	return nil, false
}
