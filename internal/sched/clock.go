// Package sched provides delayed one-shot tasks grouped under a
// cancellation key, backed by a swappable clock so tests can fast-forward
// virtual time instead of sleeping.
package sched

import "time"

// Clock abstracts wall time for the scheduler.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancelable pending callback. Stop reports whether the
// callback was still pending.
type Timer interface {
	Stop() bool
}

// RealClock delegates to the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{time.AfterFunc(d, fn)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }
