package session

import (
	"sync"
	"time"
)

// Countdown is the cancellable tick task owned by a Controller. It fires
// the given callback once per interval until stopped. It carries no
// time-remaining state of its own; the controller decrements on each
// tick, which keeps the state machine testable without real time.
type Countdown struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// startCountdown launches the tick goroutine.
func startCountdown(interval time.Duration, tick func()) *Countdown {
	c := &Countdown{
		interval: interval,
		stop:     make(chan struct{}),
	}
	go c.run(tick)
	return c
}

func (c *Countdown) run(tick func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Stop cancels the task. Safe to call any number of times, including from
// inside the tick callback. It does not wait for an in-flight tick; the
// controller treats post-stop ticks as no-ops.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
