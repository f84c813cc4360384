package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MimeClass buckets attachment MIME types for capability checks and
// preview handling.
type MimeClass string

const (
	MimeImage MimeClass = "image"
	MimePDF   MimeClass = "pdf"
	MimeText  MimeClass = "text"
	MimeOther MimeClass = "other"
)

// ClassifyMIME maps a declared MIME type (falling back to the file
// extension) onto a MimeClass.
func ClassifyMIME(mimeType, name string) MimeClass {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MimeImage
	case mimeType == "application/pdf" || strings.EqualFold(filepath.Ext(name), ".pdf"):
		return MimePDF
	case strings.HasPrefix(mimeType, "text/"):
		return MimeText
	default:
		return MimeOther
	}
}

// Attachment is a local binary file attached to a message. It is owned
// exclusively by that message.
type Attachment struct {
	Path           string
	Name           string
	MIMEType       string
	Size           int64
	Class          MimeClass
	PreviewDataURL string // base64 data URL for inline preview only
}

// Message is one entry in a chat transcript.
type Message struct {
	ID         string
	Role       string
	Raw        RawContent
	CreatedAt  time.Time
	Attachment *Attachment
	// Historical marks messages loaded from storage rather than produced
	// live. It affects the default collapse state of thinking blocks,
	// never parsing.
	Historical bool
}

// NewMessage creates a message with a fresh id.
func NewMessage(role string, raw RawContent) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Raw:       raw,
		CreatedAt: time.Now(),
	}
}
