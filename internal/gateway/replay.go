package gateway

import "sync"

type replayEntry struct {
	Seq  int64
	Data []byte // pre-built envelope JSON
}

// ReplayBuffer is a fixed-size ring of recent envelopes for one
// stream. Reconnecting clients query it by sequence range to backfill
// messages they missed. Safe for concurrent use.
type ReplayBuffer struct {
	mu    sync.RWMutex
	ring  []replayEntry
	next  int // next write position
	count int
}

// NewReplayBuffer creates a buffer holding up to capacity envelopes.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity <= 0 {
		capacity = ReplayCap
	}
	return &ReplayBuffer{ring: make([]replayEntry, capacity)}
}

// Push appends an envelope, evicting the oldest once full. The data is
// copied so the caller's slice can be reused.
func (rb *ReplayBuffer) Push(seq int64, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.ring[rb.next] = replayEntry{Seq: seq, Data: cp}
	rb.next = (rb.next + 1) % len(rb.ring)
	if rb.count < len(rb.ring) {
		rb.count++
	}
}

// Range returns the buffered entries with seq in [fromSeq, toSeq],
// oldest first.
func (rb *ReplayBuffer) Range(fromSeq, toSeq int64) []replayEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []replayEntry
	for i := 0; i < rb.count; i++ {
		e := rb.ring[rb.index(i)]
		if e.Seq >= fromSeq && e.Seq <= toSeq {
			result = append(result, e)
		}
	}
	return result
}

// Len returns how many envelopes are buffered.
func (rb *ReplayBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// index maps a logical offset (0 = oldest) to a ring position.
func (rb *ReplayBuffer) index(logical int) int {
	if rb.count < len(rb.ring) {
		return logical
	}
	return (rb.next + logical) % len(rb.ring)
}
