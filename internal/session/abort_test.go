package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestAbortCoordinatorUnarmed(t *testing.T) {
	a := NewAbortCoordinator()

	if a.Cancel() {
		t.Error("Cancel() on unarmed coordinator = true")
	}
	if a.Cancelled() {
		t.Error("Cancelled() = true before any cancel")
	}
}

func TestAbortCoordinatorCancelOnce(t *testing.T) {
	a := NewAbortCoordinator()

	var cancels, notifies int32
	notified := make(chan struct{})
	a.Arm(
		func() { atomic.AddInt32(&cancels, 1) },
		func(ctx context.Context) error {
			if atomic.AddInt32(&notifies, 1) == 1 {
				close(notified)
			}
			return nil
		},
	)

	if !a.Cancel() {
		t.Fatal("first Cancel() = false")
	}
	if a.Cancel() {
		t.Error("second Cancel() = true, want suppressed")
	}
	if !a.Cancelled() {
		t.Error("Cancelled() = false after cancel")
	}

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("notify never ran")
	}

	if got := atomic.LoadInt32(&cancels); got != 1 {
		t.Errorf("cancel ran %d times", got)
	}
	if got := atomic.LoadInt32(&notifies); got != 1 {
		t.Errorf("notify ran %d times", got)
	}
}

func TestAbortCoordinatorCooldown(t *testing.T) {
	a := NewAbortCoordinator()
	a.Arm(func() {}, nil)

	if !a.Cancel() {
		t.Fatal("first Cancel() = false")
	}

	// Re-arming starts a new exchange, but the cooldown from the previous
	// cancel still applies.
	a.Arm(func() { t.Error("cancel ran during cooldown") }, nil)
	if a.Cancel() {
		t.Error("Cancel() within cooldown = true")
	}
}

func TestAbortCoordinatorDisarm(t *testing.T) {
	a := NewAbortCoordinator()
	a.Arm(func() {}, nil)
	a.Cancel()

	a.Disarm()

	if a.Cancelled() {
		t.Error("Cancelled() = true after Disarm")
	}
	if a.Cancel() {
		t.Error("Cancel() after Disarm = true")
	}
}

func TestAbortCoordinatorNotifyFailureSwallowed(t *testing.T) {
	a := NewAbortCoordinator()

	done := make(chan struct{})
	a.Arm(func() {}, func(ctx context.Context) error {
		defer close(done)
		return errors.New("backend unreachable")
	})

	if !a.Cancel() {
		t.Fatal("Cancel() = false")
	}

	// The failure is logged, never propagated; Cancel already returned.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify never ran")
	}
}

func TestAbortCoordinatorNilNotify(t *testing.T) {
	a := NewAbortCoordinator()
	var ran bool
	a.Arm(func() { ran = true }, nil)

	if !a.Cancel() {
		t.Fatal("Cancel() = false")
	}
	if !ran {
		t.Error("local cancel did not run")
	}
}
