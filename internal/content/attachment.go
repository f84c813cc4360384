package content

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/diogo/orbchat/internal/models"
)

// MaxAttachmentSize caps files accepted for upload.
const MaxAttachmentSize = 20 * 1024 * 1024 // 20MB

// LoadAttachment builds an attachment from a local file: it stats the
// file, detects the MIME type from the extension, and captures a
// preview data URL for small files.
func LoadAttachment(path string) (*models.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("file size exceeds maximum %d bytes", MaxAttachmentSize)
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	att := &models.Attachment{
		Path:     path,
		Name:     name,
		MIMEType: mimeType,
		Size:     info.Size(),
		Class:    models.ClassifyMIME(mimeType, name),
	}
	att.PreviewDataURL = PreviewDataURL(att)

	return att, nil
}
