package api

import (
	"encoding/json"
	"strings"

	"github.com/diogo/orbchat/internal/content"
	apperrors "github.com/diogo/orbchat/internal/errors"
	"github.com/diogo/orbchat/internal/models"
)

// Payload is one user turn to send: text, an attachment, or both.
type Payload struct {
	Text       string
	Attachment *models.Attachment
}

// IsMultimodal reports whether the payload carries binary data and must
// go over the multipart endpoints.
func (p Payload) IsMultimodal() bool {
	return p.Attachment != nil
}

// Validate rejects payloads with nothing to send.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Text) == "" && p.Attachment == nil {
		return apperrors.ErrEmptySubmit
	}
	return nil
}

// Raw returns the payload as message content: plain text for text-only
// turns, a structured item list when an attachment is present. The
// attachment is referenced by preview data URL so history renders it
// without refetching.
func (p Payload) Raw() models.RawContent {
	if p.Attachment == nil {
		return models.RawContent{Kind: models.RawPlainText, Text: p.Text}
	}
	items := content.ItemsForFallback(p.Text, p.Attachment)
	return models.RawFromItems(items)
}

// persistBody returns the string form stored by the messages endpoint:
// the text itself, or the JSON item list for multimodal turns.
func (p Payload) persistBody() (string, error) {
	raw := p.Raw()
	if raw.Kind == models.RawPlainText {
		return raw.Text, nil
	}
	data, err := json.Marshal(raw.Items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
