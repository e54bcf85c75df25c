package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownTicksUntilStopped(t *testing.T) {
	var ticks atomic.Int64
	c := startCountdown(5*time.Millisecond, func() { ticks.Add(1) })

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("countdown never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	c.Stop()
	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	// At most one in-flight tick may land after Stop.
	if got := ticks.Load(); got > settled+1 {
		t.Errorf("ticks kept arriving after Stop: %d -> %d", settled, got)
	}
}

func TestCountdownStopIdempotent(t *testing.T) {
	c := startCountdown(time.Hour, func() {})
	for i := 0; i < 5; i++ {
		c.Stop() // must not panic on repeat calls
	}
}

func TestCountdownStopFromTickCallback(t *testing.T) {
	done := make(chan struct{})
	ready := make(chan *Countdown, 1)
	var once atomic.Bool
	c := startCountdown(time.Millisecond, func() {
		if once.CompareAndSwap(false, true) {
			// Stopping from inside the callback must not deadlock.
			(<-ready).Stop()
			close(done)
		}
	})
	ready <- c

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop from tick callback deadlocked")
	}
}
