// Package status tracks process-wide system state for the dashboard:
// the auto-trading flag, aggregate health, and a bounded ring of
// timestamped activity-log entries. Everything lives in memory; a
// restart starts the log from empty.
package status

import (
	"fmt"
	"sync"
	"time"
)

// LogCap bounds the activity log; the oldest entries fall off.
const LogCap = 200

// Level classifies a log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warning"
	LevelError   Level = "error"
)

// Emoji returns the dashboard marker for the level.
func (l Level) Emoji() string {
	switch l {
	case LevelSuccess:
		return "✅"
	case LevelWarn:
		return "⚠️"
	case LevelError:
		return "🚨"
	default:
		return "ℹ️"
	}
}

// Entry is one activity-log line.
type Entry struct {
	At      time.Time `json:"at"`
	Level   Level     `json:"level"`
	Emoji   string    `json:"emoji"`
	Message string    `json:"message"`
}

// Snapshot is the aggregate view served by the status endpoint.
type Snapshot struct {
	State         string        `json:"state"` // running | stopped | error
	AutoTrading   bool          `json:"autoTrading"`
	StartedAt     time.Time     `json:"startedAt"`
	UptimeSeconds int64         `json:"uptimeSeconds"`
	Counts        map[Level]int `json:"counts"`
	LogSize       int           `json:"logSize"`
	LastEntry     *Entry        `json:"lastEntry,omitempty"`
}

// Tracker owns the system state. Safe for concurrent use.
type Tracker struct {
	mu          sync.RWMutex
	autoTrading bool
	startedAt   time.Time
	logs        []Entry // newest first
	counts      map[Level]int

	now func() time.Time

	// OnEntry is called after each appended entry, outside the lock.
	OnEntry func(Entry)
}

// NewTracker creates a Tracker with an empty log.
func NewTracker() *Tracker {
	t := &Tracker{
		counts: make(map[Level]int),
		now:    time.Now,
	}
	t.startedAt = t.now()
	return t
}

// SetAutoTrading flips the running flag.
func (t *Tracker) SetAutoTrading(on bool) {
	t.mu.Lock()
	t.autoTrading = on
	t.mu.Unlock()
}

// AutoTrading reports whether the trading loop is enabled.
func (t *Tracker) AutoTrading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.autoTrading
}

// Infof appends an info entry.
func (t *Tracker) Infof(format string, args ...any) {
	t.append(LevelInfo, fmt.Sprintf(format, args...))
}

// Successf appends a success entry.
func (t *Tracker) Successf(format string, args ...any) {
	t.append(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warnf appends a warning entry.
func (t *Tracker) Warnf(format string, args ...any) {
	t.append(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf appends an error entry.
func (t *Tracker) Errorf(format string, args ...any) {
	t.append(LevelError, fmt.Sprintf(format, args...))
}

func (t *Tracker) append(level Level, msg string) {
	entry := Entry{
		At:      t.now(),
		Level:   level,
		Emoji:   level.Emoji(),
		Message: msg,
	}

	t.mu.Lock()
	t.logs = append([]Entry{entry}, t.logs...)
	if len(t.logs) > LogCap {
		t.logs = t.logs[:LogCap]
	}
	t.counts[level]++
	hook := t.OnEntry
	t.mu.Unlock()

	if hook != nil {
		hook(entry)
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns the
// whole ring.
func (t *Tracker) Recent(n int) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n <= 0 || n > len(t.logs) {
		n = len(t.logs)
	}
	out := make([]Entry, n)
	copy(out, t.logs[:n])
	return out
}

// Counts returns per-level totals since process start. Totals keep
// counting even after the ring evicts old entries.
func (t *Tracker) Counts() map[Level]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[Level]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// Overall reports the aggregate state: "error" when the newest log
// entry is an error, otherwise "running"/"stopped" per the trading
// flag.
func (t *Tracker) Overall() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.overallLocked()
}

func (t *Tracker) overallLocked() string {
	if len(t.logs) > 0 && t.logs[0].Level == LevelError {
		return "error"
	}
	if t.autoTrading {
		return "running"
	}
	return "stopped"
}

// Snapshot assembles the aggregate view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{
		State:         t.overallLocked(),
		AutoTrading:   t.autoTrading,
		StartedAt:     t.startedAt,
		UptimeSeconds: int64(t.now().Sub(t.startedAt).Seconds()),
		Counts:        make(map[Level]int, len(t.counts)),
		LogSize:       len(t.logs),
	}
	for k, v := range t.counts {
		snap.Counts[k] = v
	}
	if len(t.logs) > 0 {
		last := t.logs[0]
		snap.LastEntry = &last
	}
	return snap
}
