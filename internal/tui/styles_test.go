package tui

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/diogo/orbchat/internal/errors"
)

func TestFormatErrorNil(t *testing.T) {
	if got := FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q", got)
	}
}

func TestFormatErrorAPIError(t *testing.T) {
	err := apperrors.NewAPIErrorWithBody(503, "/chats", "service unavailable", "try later")

	out := FormatError(err)

	for _, want := range []string{"503", "/chats", "try later"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatErrorHints(t *testing.T) {
	netErr := apperrors.NewNetworkError("POST", "/chat-stream", errors.New("refused"))
	if out := FormatError(netErr); !strings.Contains(out, "reachable") {
		t.Errorf("no network hint:\n%s", out)
	}

	streamErr := apperrors.NewStreamError(errors.New("unexpected EOF"))
	if out := FormatError(streamErr); !strings.Contains(out, "partial response") {
		t.Errorf("no stream hint:\n%s", out)
	}
}
