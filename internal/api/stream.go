package api

import (
	"context"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"

	apperrors "github.com/diogo/orbchat/internal/errors"
	"github.com/diogo/orbchat/internal/models"
)

// Stream is an open response stream. The body is the raw token stream;
// for new-chat calls the created chat id arrives in response metadata.
type Stream struct {
	ChatID string
	reader *StreamReader
}

// Next returns the next text delta. See StreamReader.Next.
func (s *Stream) Next(ctx context.Context) (string, error) {
	return s.reader.Next(ctx)
}

// Close releases the underlying connection. Idempotent.
func (s *Stream) Close() error {
	return s.reader.Close()
}

// OpenNewChatStream starts a new chat from the payload and streams the
// first assistant response. The returned stream carries the new chat id.
func (c *Client) OpenNewChatStream(ctx context.Context, p Payload) (*Stream, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.IsMultimodal() {
		return c.openMultimodal(ctx, c.routes.NewMultimodalStream(), p, "")
	}

	endpoint := c.routes.NewChatStream(c.LLM().ID)
	req, err := c.newRequest(ctx, fhttp.MethodPost, endpoint, strings.NewReader(p.Text), "text/plain")
	if err != nil {
		return nil, err
	}
	return c.openStream(req, true)
}

// OpenChatStream sends the payload to an existing chat and streams the
// assistant response.
func (c *Client) OpenChatStream(ctx context.Context, chatID string, p Payload) (*Stream, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.IsMultimodal() {
		return c.openMultimodal(ctx, c.routes.MultimodalStream(), p, chatID)
	}

	endpoint := c.routes.ChatStream(chatID, c.LLM().ID)
	req, err := c.newRequest(ctx, fhttp.MethodPost, endpoint, strings.NewReader(p.Text), "text/plain")
	if err != nil {
		return nil, err
	}

	stream, err := c.openStream(req, false)
	if err != nil {
		return nil, err
	}
	stream.ChatID = chatID
	return stream, nil
}

func (c *Client) openMultimodal(ctx context.Context, endpoint string, p Payload, chatID string) (*Stream, error) {
	body, contentType, err := multimodalBody(p, c.LLM().ID, chatID)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, fhttp.MethodPost, endpoint, body, contentType)
	if err != nil {
		return nil, err
	}

	stream, err := c.openStream(req, chatID == "")
	if err != nil {
		return nil, err
	}
	if chatID != "" {
		stream.ChatID = chatID
	}
	return stream, nil
}

// openStream executes the request and wraps the body. wantChatID marks
// new-chat calls, whose response must name the created chat.
func (c *Client) openStream(req *fhttp.Request, wantChatID bool) (*Stream, error) {
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if resp.Body == nil {
		return nil, apperrors.ErrNoBody
	}

	stream := &Stream{reader: NewStreamReader(resp.Body)}

	if wantChatID {
		stream.ChatID = resp.Header.Get(models.HeaderChatID)
		if stream.ChatID == "" {
			_ = stream.Close()
			return nil, apperrors.NewAPIError(resp.StatusCode, req.URL.Path, "stream response missing chat id header")
		}
	}

	return stream, nil
}
