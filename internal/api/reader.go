package api

import (
	"context"
	"io"
	"sync"
	"unicode/utf8"

	apperrors "github.com/diogo/orbchat/internal/errors"
)

const readChunkSize = 4096

type chunk struct {
	data []byte
	err  error
}

// StreamReader turns a streaming response body into a sequence of text
// deltas. Chunks arrive on arbitrary byte boundaries, so a delta never
// splits a multi-byte UTF-8 sequence: trailing incomplete bytes are held
// back and prepended to the next chunk. Each byte is examined once.
//
// Next is meant to be called from a single goroutine; Close may be
// called from any goroutine to unblock a pending read.
type StreamReader struct {
	body   io.ReadCloser
	chunks chan chunk
	done   chan struct{}

	pending []byte
	err     error

	closeOnce sync.Once
	closeErr  error
}

// NewStreamReader wraps a response body. It owns the body and closes it.
func NewStreamReader(body io.ReadCloser) *StreamReader {
	r := &StreamReader{
		body:   body,
		chunks: make(chan chunk),
		done:   make(chan struct{}),
	}
	go r.pump()
	return r
}

// pump moves bytes from the blocking body read onto the channel so Next
// can select against context cancellation.
func (r *StreamReader) pump() {
	defer close(r.chunks)
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.body.Read(buf)
		var data []byte
		if n > 0 {
			data = append([]byte(nil), buf[:n]...)
		}
		select {
		case r.chunks <- chunk{data: data, err: err}:
		case <-r.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Next returns the next text delta. It blocks until bytes arrive, the
// stream ends (io.EOF), the stream fails, or ctx is cancelled. After a
// terminal return every subsequent call returns the same condition.
func (r *StreamReader) Next(ctx context.Context) (string, error) {
	for {
		if len(r.pending) == 0 && r.err != nil {
			return "", r.terminal()
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case c, ok := <-r.chunks:
			if !ok {
				if r.err == nil {
					r.err = apperrors.ErrStreamClosed
				}
				return "", r.terminal()
			}

			if len(c.data) > 0 {
				r.pending = append(r.pending, c.data...)
			}
			if c.err != nil {
				r.err = c.err
				// Flush the tail as-is; an incomplete sequence at true
				// end-of-stream cannot be completed anyway.
				if len(r.pending) > 0 {
					delta := string(r.pending)
					r.pending = nil
					return delta, nil
				}
				return "", r.terminal()
			}

			complete, rest := splitCompleteRunes(r.pending)
			if len(complete) == 0 {
				continue
			}
			delta := string(complete)
			r.pending = append(r.pending[:0], rest...)
			return delta, nil
		}
	}
}

func (r *StreamReader) terminal() error {
	if r.err == io.EOF || r.err == apperrors.ErrStreamClosed {
		return r.err
	}
	return apperrors.NewStreamError(r.err)
}

// Close closes the underlying body and stops the pump. Idempotent.
func (r *StreamReader) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.closeErr = r.body.Close()
	})
	return r.closeErr
}

// splitCompleteRunes splits b into a prefix safe to emit and a trailing
// incomplete UTF-8 sequence (at most 3 bytes). Invalid bytes are not
// held back; only a genuinely unfinished sequence is.
func splitCompleteRunes(b []byte) (complete, rest []byte) {
	n := len(b)
	if n == 0 {
		return b, nil
	}

	// Walk back over continuation bytes to the candidate rune start.
	start := n - 1
	for start > 0 && n-start < utf8.UTFMax && b[start]&0xC0 == 0x80 {
		start--
	}

	if b[start] < utf8.RuneSelf {
		return b, nil
	}
	if utf8.FullRune(b[start:]) {
		return b, nil
	}
	return b[:start], b[start:]
}
