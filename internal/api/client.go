// Package api implements the HTTP client for the Orb chat backend,
// including the streaming endpoints that deliver assistant responses as
// raw token deltas.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/orbchat/internal/config"
	apperrors "github.com/diogo/orbchat/internal/errors"
	"github.com/diogo/orbchat/internal/models"
)

// maxErrorBody bounds how much of an error response we read back for
// diagnostics.
const maxErrorBody = 4 * 1024

// Client is the HTTP client for the Orb backend.
type Client struct {
	httpClient tls_client.HttpClient
	routes     models.Routes
	token      string

	mu     sync.RWMutex
	llm    models.LLM
	closed bool

	timeoutSeconds int
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithLLM sets the default LLM for the client
func WithLLM(llm models.LLM) ClientOption {
	return func(c *Client) {
		c.llm = llm
	}
}

// WithTimeoutSeconds sets the transport timeout. Streaming responses can
// stay open for minutes, so the default is generous.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests to
// inject a mock transport.
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Client from config
func NewClient(cfg config.Config, opts ...ClientOption) (*Client, error) {
	base := strings.TrimRight(cfg.BackendURL, "/")
	if base == "" {
		return nil, fmt.Errorf("backend URL is not configured")
	}

	client := &Client{
		routes:         models.Routes{Base: base},
		token:          cfg.AccessToken,
		llm:            models.LLMFromID(cfg.DefaultLLM),
		timeoutSeconds: 300,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close shuts down the client
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// LLM returns the currently selected model
func (c *Client) LLM() models.LLM {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llm
}

// SetLLM selects the model used for subsequent exchanges
func (c *Client) SetLLM(llm models.LLM) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llm = llm
}

// Routes returns the endpoint builder for the configured base URL
func (c *Client) Routes() models.Routes {
	return c.routes
}

// newRequest builds a request with the standard headers applied.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader, contentType string) (*fhttp.Request, error) {
	req, err := fhttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range models.DefaultHeaders(c.token) {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// do executes a request and maps transport failures and non-2xx
// statuses to the shared error types. On success the caller owns the
// response body.
func (c *Client) do(req *fhttp.Request) (*fhttp.Response, error) {
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	endpoint := req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewNetworkError(req.Method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail string
		if resp.Body != nil {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = resp.Body.Close()
			detail = strings.TrimSpace(string(data))
		}
		msg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		return nil, apperrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, msg, detail)
	}

	return resp, nil
}

// readJSON executes a request and returns the full response body.
func (c *Client) readJSON(req *fhttp.Request) ([]byte, error) {
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		return nil, apperrors.ErrNoBody
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("read", req.URL.Path, err)
	}
	return data, nil
}
