package orchestration

import (
	"sync"
	"time"
)

// Clock abstracts time for the loop so tests can drive ticks without real
// delays.
type Clock interface {
	Now() time.Time
	Tick(d time.Duration) (<-chan time.Time, func())
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) Tick(d time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}

// NewWallClock returns the production clock.
func NewWallClock() Clock { return wallClock{} }

// ManualClock is a hand-driven clock for tests. Advance moves the current
// time and fires a tick into every channel handed out by Tick.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks []chan time.Time
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Tick(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.ticks = append(c.ticks, ch)
	c.mu.Unlock()
	return ch, func() {}
}

// Advance moves the clock forward and delivers one tick.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	ticks := append([]chan time.Time(nil), c.ticks...)
	c.mu.Unlock()

	for _, ch := range ticks {
		select {
		case ch <- now:
		default:
		}
	}
}
