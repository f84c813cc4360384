// Package errors provides custom error types for the Orb chat client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNoBody means a streaming endpoint answered without a readable
	// body. Terminal for the exchange.
	ErrNoBody = errors.New("response has no readable body")
	// ErrCancelled marks a user-initiated cancellation. Never surfaced
	// as a failure.
	ErrCancelled = errors.New("exchange cancelled")
	// ErrEmptySubmit is returned when a submit carries neither text nor
	// an attachment.
	ErrEmptySubmit = errors.New("nothing to submit")
	// ErrStreamClosed is returned by reads after the stream was closed.
	ErrStreamClosed = errors.New("stream closed")
)

// APIError represents a non-2xx backend response.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{StatusCode: statusCode, Endpoint: endpoint, Message: message}
}

// NewAPIErrorWithBody creates an APIError carrying the response body for
// diagnostics.
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{StatusCode: statusCode, Endpoint: endpoint, Message: message, Body: body}
}

// NetworkError represents a transport failure before any response arrived.
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError creates a new NetworkError.
func NewNetworkError(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}

// StreamError represents a body failure after tokens were already
// received. The partial text is kept by the caller.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// NewStreamError creates a new StreamError.
func NewStreamError(err error) *StreamError {
	return &StreamError{Err: err}
}

// IsCancellation reports whether err stems from a user-initiated abort.
// Context cancellation surfacing through the transport counts; deadline
// expiry does not.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return true
	}
	// tls-client flattens the context error into its message
	return strings.Contains(err.Error(), "context canceled")
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsStreamError reports whether err occurred mid-stream.
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}

// GetHTTPStatus extracts the HTTP status from an APIError chain, or 0.
func GetHTTPStatus(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint from an APIError or NetworkError
// chain, or "".
func GetEndpoint(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Endpoint
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Endpoint
	}
	return ""
}

// GetResponseBody extracts the response body from an APIError chain, or "".
func GetResponseBody(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Body
	}
	return ""
}
