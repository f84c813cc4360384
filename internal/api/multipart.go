package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strconv"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, `\"`)

// multimodalBody encodes a payload as the multipart form the multimodal
// stream endpoints expect. The file part carries raw bytes with its real
// content type; base64 inflation is reserved for the fallback path.
// chatID is empty when creating a new chat.
func multimodalBody(p Payload, llmID, chatID string) (io.Reader, string, error) {
	att := p.Attachment
	if att == nil {
		return nil, "", fmt.Errorf("payload has no attachment")
	}

	file, err := os.Open(att.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open attachment: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(att.Name)))
	header.Set("Content-Type", att.MIMEType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}

	fields := map[string]string{
		"fileName": att.Name,
		"fileType": att.MIMEType,
		"fileSize": strconv.FormatInt(att.Size, 10),
		"llmId":    llmID,
	}
	if text := strings.TrimSpace(p.Text); text != "" {
		fields["prompt"] = text
	}
	if chatID != "" {
		fields["chatId"] = chatID
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
