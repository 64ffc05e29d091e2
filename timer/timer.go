// Package timer runs cancellable periodic callbacks against a replaceable
// clock
package timer

import (
	"sync"
	"time"
)

// Clock is the time source for schedules.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// System is the wall clock.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	*time.Ticker
}

func (t systemTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// Schedule calls a function on every tick until stopped.
type Schedule struct {
	ticker Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Every starts calling fn every d. Callbacks run one at a time on a
// dedicated goroutine.
func Every(clock Clock, d time.Duration, fn func(time.Time)) *Schedule {
	s := &Schedule{
		ticker: clock.NewTicker(d),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)

	go s.run(fn)

	return s
}

func (s *Schedule) run(fn func(time.Time)) {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case t := <-s.ticker.C():
			select {
			case <-s.done:
				return
			default:
			}

			fn(t)
		}
	}
}

// Stop cancels the schedule and waits for a running callback to return. No
// callback starts after Stop returns. Stop must not be called from inside
// the callback. It is safe to call more than once and on a nil Schedule.
func (s *Schedule) Stop() {
	if s == nil {
		return
	}

	s.once.Do(func() {
		close(s.done)
		s.ticker.Stop()
	})

	s.wg.Wait()
}
