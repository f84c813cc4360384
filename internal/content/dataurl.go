package content

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/diogo/orbchat/internal/models"
)

// MaxPreviewSize caps attachments that get an inline base64 preview.
// Larger files still upload fine over the binary transport; they just
// render as a label instead of a thumbnail.
const MaxPreviewSize = 8 * 1024 * 1024

// DataURL encodes bytes as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// PreviewDataURL reads the attachment file and returns a data URL for
// preview rendering, or "" when the file is too large or unreadable.
// This is the only place binary data gets base64-encoded on the happy
// path; the wire payload carries raw bytes.
func PreviewDataURL(att *models.Attachment) string {
	if att == nil || att.Size > MaxPreviewSize {
		return ""
	}
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return ""
	}
	return DataURL(att.MIMEType, data)
}

// ItemsForFallback builds a structured item list carrying the attachment
// as a data URL. This is the degenerate path for transports that cannot
// carry raw binary parts; it costs ~33% in size and exists only for
// compatibility.
func ItemsForFallback(text string, att *models.Attachment) []models.ContentItem {
	var items []models.ContentItem
	if text != "" {
		items = append(items, models.TextItem(text))
	}
	if att != nil {
		data, err := os.ReadFile(att.Path)
		if err == nil {
			url := DataURL(att.MIMEType, data)
			if att.Class == models.MimeImage {
				items = append(items, models.ImageItem(url))
			} else {
				items = append(items, models.FileItem(url))
			}
		}
	}
	return items
}
