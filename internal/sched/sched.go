package sched

import (
	"sync"
	"time"
)

// Scheduler runs delayed one-shot tasks. Every task belongs to a group
// key (the parent order id for stop-loss/take-profit follow-ups) so all
// of a parent's pending children can be canceled together.
type Scheduler struct {
	mu    sync.Mutex
	clock Clock
	seq   int
	tasks map[string]map[int]Timer
}

// New creates a Scheduler on the given clock; nil means wall time.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		clock: clock,
		tasks: make(map[string]map[int]Timer),
	}
}

// Clock returns the scheduler's clock.
func (s *Scheduler) Clock() Clock { return s.clock }

// Schedule queues fn to run once after delay under the given group.
func (s *Scheduler) Schedule(group string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := s.seq
	if s.tasks[group] == nil {
		s.tasks[group] = make(map[int]Timer)
	}
	s.tasks[group][id] = s.clock.AfterFunc(delay, func() {
		s.remove(group, id)
		fn()
	})
}

// Cancel stops every pending task in the group and reports how many
// were still pending.
func (s *Scheduler) Cancel(group string) int {
	s.mu.Lock()
	timers := s.tasks[group]
	delete(s.tasks, group)
	s.mu.Unlock()

	stopped := 0
	for _, t := range timers {
		if t.Stop() {
			stopped++
		}
	}
	return stopped
}

// Stop cancels every pending task across all groups.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	all := s.tasks
	s.tasks = make(map[string]map[int]Timer)
	s.mu.Unlock()

	for _, timers := range all {
		for _, t := range timers {
			t.Stop()
		}
	}
}

// Pending returns the number of tasks still queued.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, timers := range s.tasks {
		n += len(timers)
	}
	return n
}

func (s *Scheduler) remove(group string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timers, ok := s.tasks[group]; ok {
		delete(timers, id)
		if len(timers) == 0 {
			delete(s.tasks, group)
		}
	}
}
