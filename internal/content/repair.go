package content

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/diogo/orbchat/internal/models"
)

// RepairDump parses the legacy equals-sign-delimited dump into plain Go
// values (slices, maps, strings) suitable for JSON re-marshaling.
//
// The dump is what you get by toString'ing a map-and-list structure:
// unquoted keys and values, `=` between them, `,` both inside values and
// between pairs, and embedded data: URIs whose base64 payload carries
// `,`, `/`, `+` and `=` padding. A regex cannot split this reliably, so
// the repair is a small tokenizer feeding a recursive-descent builder:
// bracket tokens open arrays/objects, `data:` starts an atomic URI token,
// and a comma only terminates a scalar when what follows looks like the
// next `key=` pair or a new structure.
func RepairDump(s string) (any, error) {
	p := &dumpParser{s: s}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("trailing data at offset %d", p.pos)
	}
	return v, nil
}

type dumpParser struct {
	s   string
	pos int
}

func (p *dumpParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n' || p.s[p.pos] == '\r') {
		p.pos++
	}
}

func (p *dumpParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *dumpParser) parseValue() (any, error) {
	p.skipSpace()
	switch {
	case p.peek() == '[':
		return p.parseArray()
	case p.peek() == '{':
		return p.parseObject()
	case strings.HasPrefix(p.s[p.pos:], "data:"):
		return p.parseDataURI(), nil
	default:
		return p.parseScalar()
	}
}

func (p *dumpParser) parseArray() (any, error) {
	p.pos++ // consume '['
	var out []any

	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return out, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
		}
	}
}

func (p *dumpParser) parseObject() (any, error) {
	p.pos++ // consume '{'
	out := map[string]any{}

	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return out, nil
	}

	for {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[key] = v

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("expected ',' or '}' at offset %d", p.pos)
		}
	}
}

// parseKey consumes `ident=`.
func (p *dumpParser) parseKey() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && isIdentChar(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("expected key at offset %d", p.pos)
	}
	key := p.s[start:p.pos]
	p.skipSpace()
	if p.peek() != '=' {
		return "", fmt.Errorf("expected '=' after key %q at offset %d", key, p.pos)
	}
	p.pos++
	return key, nil
}

// parseDataURI consumes a data: URI as one atomic token: the mediatype up
// to its comma, the comma, then the base64 alphabet. This keeps the
// payload's internal comma and `=` padding from being mistaken for
// structural delimiters.
func (p *dumpParser) parseDataURI() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == ',' {
			p.pos++
			break
		}
		if c == '}' || c == ']' {
			return strings.TrimSpace(p.s[start:p.pos])
		}
		p.pos++
	}
	for p.pos < len(p.s) && isBase64Char(p.s[p.pos]) {
		p.pos++
	}
	return strings.TrimSpace(p.s[start:p.pos])
}

// parseScalar consumes an unquoted value. `}` and `]` always terminate;
// a `,` terminates only when followed by the next `key=` pair or a new
// structure, so values like "Hello, world" survive intact.
func (p *dumpParser) parseScalar() (any, error) {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '}' || c == ']' {
			break
		}
		if c == ',' && p.commaIsDelimiter() {
			break
		}
		p.pos++
	}

	val := strings.TrimSpace(p.s[start:p.pos])
	if val == "null" {
		return nil, nil
	}
	return val, nil
}

// commaIsDelimiter looks past the comma at p.pos for `ident=` or an
// opening bracket.
func (p *dumpParser) commaIsDelimiter() bool {
	i := p.pos + 1
	for i < len(p.s) && (p.s[i] == ' ' || p.s[i] == '\t' || p.s[i] == '\n' || p.s[i] == '\r') {
		i++
	}
	if i >= len(p.s) {
		return true
	}
	if p.s[i] == '{' || p.s[i] == '[' {
		return true
	}
	j := i
	for j < len(p.s) && isIdentChar(p.s[j]) {
		j++
	}
	return j > i && j < len(p.s) && p.s[j] == '='
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isBase64Char(c byte) bool {
	return c == '+' || c == '/' || c == '=' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Fallback patterns, retained from the regex pipeline that predates the
// tokenizer. Used only when repair-then-parse fails.
var (
	textPattern      = regexp.MustCompile(`text=([^,\]}]*)`)
	imageURLPattern  = regexp.MustCompile(`(?:file_url|image_url)=\{url=(data:image/[^,]+,[A-Za-z0-9+/=]*)`)
	directImgPattern = regexp.MustCompile(`url=(data:image/[^,]+,[A-Za-z0-9+/=]*)`)
	filePattern      = regexp.MustCompile(`url=(data:(?:application|text)/[^}]+)`)
)

// extractByPattern pulls whatever text/image/file fragments the patterns
// can find, deduplicating URLs. Best effort by design.
func extractByPattern(s string) []models.ContentItem {
	var items []models.ContentItem
	seen := map[string]bool{}

	for _, m := range textPattern.FindAllStringSubmatch(s, -1) {
		text := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		if text != "" && text != "null" {
			items = append(items, models.TextItem(text))
		}
	}

	addURL := func(url string, item models.ContentItem) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		items = append(items, item)
	}

	for _, m := range imageURLPattern.FindAllStringSubmatch(s, -1) {
		addURL(m[1], models.ImageItem(strings.TrimSpace(m[1])))
	}
	for _, m := range directImgPattern.FindAllStringSubmatch(s, -1) {
		addURL(m[1], models.ImageItem(strings.TrimSpace(m[1])))
	}
	for _, m := range filePattern.FindAllStringSubmatch(s, -1) {
		addURL(m[1], models.FileItem(strings.TrimSpace(m[1])))
	}

	return items
}
