// Package session runs chat exchanges: it owns the transcript, the
// exchange state machine, and cancellation. The UI layer consumes its
// event stream and never touches the network directly.
package session

import (
	"github.com/diogo/orbchat/internal/models"
)

// State is the exchange lifecycle phase. At most one exchange runs at a
// time; every phase except Idle belongs to the active exchange.
type State int

const (
	StateIdle State = iota
	StateCreatingChat
	StateAwaitingStream
	StateStreaming
	StateFinalizing
)

// Busy reports whether an exchange is in flight.
func (s State) Busy() bool {
	return s != StateIdle
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreatingChat:
		return "creating_chat"
	case StateAwaitingStream:
		return "awaiting_stream"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Event is a notification on the controller's event channel. Events for
// one exchange arrive in order; DeltaEvents always refer to the message
// most recently announced by a MessageEvent.
type Event interface {
	isEvent()
}

// StateEvent announces a state transition.
type StateEvent struct {
	State State
}

// ChatEvent announces the active chat changed, including the id a new
// chat received from the backend.
type ChatEvent struct {
	ChatID string
}

// MessageEvent announces a message appended to (or replaced in) the
// transcript.
type MessageEvent struct {
	Message models.Message
}

// DeltaEvent carries one streamed text delta for the message with the
// given id. The full accumulated text rides along so consumers can
// re-derive their view without tracking concatenation themselves.
type DeltaEvent struct {
	MessageID string
	Delta     string
	Text      string
}

// ErrorEvent reports a failure worth surfacing. Cancellation is never
// reported as an error.
type ErrorEvent struct {
	Err error
}

// DoneEvent marks the end of an exchange.
type DoneEvent struct {
	Aborted bool
}

func (StateEvent) isEvent()   {}
func (ChatEvent) isEvent()    {}
func (MessageEvent) isEvent() {}
func (DeltaEvent) isEvent()   {}
func (ErrorEvent) isEvent()   {}
func (DoneEvent) isEvent()    {}
