package timer

import (
	"sync"
	"time"
)

// ManualClock is a Clock that only moves when Advance is called.
type ManualClock struct {
	now     time.Time
	tickers []*manualTicker
	mu      sync.Mutex
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("timer: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTicker{
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
		period:  d,
		next:    c.now.Add(d),
	}

	c.tickers = append(c.tickers, t)

	return t
}

// Advance moves the clock forward by d and delivers every tick that fell
// due, in order. Each delivery blocks until the tick is received or the
// ticker is stopped.
func (c *ManualClock) Advance(d time.Duration) {
	type delivery struct {
		at time.Time
		t  *manualTicker
	}

	c.mu.Lock()

	c.now = c.now.Add(d)

	var due []delivery

	live := c.tickers[:0]

	for _, t := range c.tickers {
		if t.isStopped() {
			continue
		}

		live = append(live, t)

		for !t.next.After(c.now) {
			due = append(due, delivery{at: t.next, t: t})
			t.next = t.next.Add(t.period)
		}
	}

	c.tickers = live

	c.mu.Unlock()

	for _, dl := range due {
		select {
		case dl.t.c <- dl.at:
		case <-dl.t.stopped:
		}
	}
}

type manualTicker struct {
	next    time.Time
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
	period  time.Duration
}

func (t *manualTicker) C() <-chan time.Time {
	return t.c
}

func (t *manualTicker) Stop() {
	t.once.Do(func() {
		close(t.stopped)
	})
}

func (t *manualTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}
