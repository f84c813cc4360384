package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/orbchat/internal/logging"
)

const (
	// cancelCooldown suppresses repeated stop requests so a double-tap
	// cannot send duplicate remote aborts.
	cancelCooldown = 2 * time.Second

	// notifyTimeout bounds the best-effort remote abort notification.
	notifyTimeout = 5 * time.Second
)

// AbortCoordinator serializes cancellation of the active exchange. Local
// cancellation (context + stream teardown) happens exactly once per
// exchange; the remote notification is fire-and-forget and its failure
// is logged, never surfaced.
type AbortCoordinator struct {
	mu         sync.Mutex
	cancelled  bool
	lastCancel time.Time
	cancel     func()
	notify     func(context.Context) error
}

// NewAbortCoordinator returns a coordinator with nothing armed; Cancel
// is a no-op until Arm is called.
func NewAbortCoordinator() *AbortCoordinator {
	return &AbortCoordinator{}
}

// Arm binds the coordinator to a new exchange. cancel tears the
// exchange down locally; notify tells the backend to stop generating.
func (a *AbortCoordinator) Arm(cancel func(), notify func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelled = false
	a.cancel = cancel
	a.notify = notify
}

// Disarm detaches the coordinator from the finished exchange.
func (a *AbortCoordinator) Disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelled = false
	a.cancel = nil
	a.notify = nil
}

// Cancel aborts the armed exchange. Returns false when suppressed:
// nothing armed, already cancelled, or within the cooldown window.
func (a *AbortCoordinator) Cancel() bool {
	a.mu.Lock()

	if a.cancel == nil || a.cancelled {
		a.mu.Unlock()
		return false
	}
	if time.Since(a.lastCancel) < cancelCooldown {
		a.mu.Unlock()
		return false
	}

	a.cancelled = true
	a.lastCancel = time.Now()
	cancel := a.cancel
	notify := a.notify
	a.mu.Unlock()

	cancel()

	if notify != nil {
		go func() {
			ctx, done := context.WithTimeout(context.Background(), notifyTimeout)
			defer done()
			if err := notify(ctx); err != nil {
				logging.L().Warn("abort notification failed", zap.Error(err))
			}
		}()
	}

	return true
}

// Cancelled reports whether the armed exchange was cancelled.
func (a *AbortCoordinator) Cancelled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancelled
}
