package sched

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced Clock for tests. Advance fires due
// callbacks synchronously on the calling goroutine, in deadline order,
// with Now() reading each callback's own deadline while it runs.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	seq      int
	deadline time.Time
	fn       func()
}

// NewFake creates a FakeClock starting at the given instant.
func NewFake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, seq: c.seq, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing every timer that falls due,
// including timers scheduled by the fired callbacks themselves when
// their deadlines still fall inside the window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		t := c.popDueLocked(target)
		if t == nil {
			break
		}
		if t.deadline.After(c.now) {
			c.now = t.deadline
		}
		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// popDueLocked removes and returns the earliest timer due at or before
// target; ties fire in scheduling order.
func (c *FakeClock) popDueLocked(target time.Time) *fakeTimer {
	best := -1
	for i, t := range c.timers {
		if t.deadline.After(target) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		b := c.timers[best]
		if t.deadline.Before(b.deadline) || (t.deadline.Equal(b.deadline) && t.seq < b.seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	t := c.timers[best]
	c.timers = append(c.timers[:best], c.timers[best+1:]...)
	return t
}

func (t *fakeTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, pending := range c.timers {
		if pending == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}
