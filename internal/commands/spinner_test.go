package commands

import (
	"testing"
	"time"
)

func TestSpinnerFinish(t *testing.T) {
	s := newSpinner("working")
	s.start()

	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.finish()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("finish did not return")
	}
}

func TestSpinnerStopIdempotent(t *testing.T) {
	s := newSpinner("working")
	s.start()

	// Multiple stops must not panic on a closed channel
	s.stopOnce()
	s.stopOnce()
	s.finish()
}
