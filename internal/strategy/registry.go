package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// RecentSignalsCap bounds the shared recent-signals list.
const RecentSignalsCap = 20

// ErrNotFound is returned for lookups of unknown strategy ids.
var ErrNotFound = errors.New("strategy not found")

// Registry is the in-memory strategy catalog and the only owner of
// strategy mutable state. Nothing here is persisted: a restart rebuilds
// the catalog from the seed set and zeroed performance.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byID   map[string]*StrategyConfig
	perf   map[string]*perfState
	recent []model.Signal

	now func() time.Time
}

// NewRegistry builds a registry seeded with the given configs. Invalid
// or duplicate seeds are rejected.
func NewRegistry(seed ...StrategyConfig) (*Registry, error) {
	r := &Registry{
		byID: make(map[string]*StrategyConfig),
		perf: make(map[string]*perfState),
		now:  time.Now,
	}
	for _, cfg := range seed {
		if err := r.Add(cfg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a new strategy.
func (r *Registry) Add(cfg StrategyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[cfg.ID]; ok {
		return fmt.Errorf("strategy %s already exists", cfg.ID)
	}
	now := r.now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	c := cfg
	r.byID[c.ID] = &c
	r.order = append(r.order, c.ID)
	r.perf[c.ID] = &perfState{}
	return nil
}

// List returns copies of every strategy in insertion order.
func (r *Registry) List() []StrategyConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StrategyConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyConfig(r.byID[id]))
	}
	return out
}

// Enabled returns copies of the strategies currently enabled.
func (r *Registry) Enabled() []StrategyConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []StrategyConfig
	for _, id := range r.order {
		if c := r.byID[id]; c.Enabled {
			out = append(out, copyConfig(c))
		}
	}
	return out
}

// Get returns a copy of one strategy.
func (r *Registry) Get(id string) (StrategyConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return StrategyConfig{}, ErrNotFound
	}
	return copyConfig(c), nil
}

// Patch applies a partial update: fields present in the JSON body
// overwrite, absent fields retain their prior value. The id and the
// registry-owned fields (performance, lastSignal, createdAt) survive
// any patch.
func (r *Registry) Patch(id string, patch []byte) (StrategyConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return StrategyConfig{}, ErrNotFound
	}

	next := copyConfig(cur)
	if err := json.Unmarshal(patch, &next); err != nil {
		return StrategyConfig{}, fmt.Errorf("invalid patch: %w", err)
	}
	next.ID = cur.ID
	next.Performance = cur.Performance
	next.LastSignal = cur.LastSignal
	next.CreatedAt = cur.CreatedAt
	if err := next.Validate(); err != nil {
		return StrategyConfig{}, err
	}
	next.UpdatedAt = r.now()

	*cur = next
	return copyConfig(cur), nil
}

// SetEnabled toggles one strategy.
func (r *Registry) SetEnabled(id string, enabled bool) (StrategyConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return StrategyConfig{}, ErrNotFound
	}
	cur.Enabled = enabled
	cur.UpdatedAt = r.now()
	return copyConfig(cur), nil
}

// RecordSignal stores the evaluation outcome on its strategy and, for
// actionable signals, in the shared recent list (newest first, bounded).
func (r *Registry) RecordSignal(sig model.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byID[sig.StrategyID]; ok {
		s := sig
		cur.LastSignal = &s
	}
	if sig.Action == model.ActionHold {
		return
	}
	r.recent = append([]model.Signal{sig}, r.recent...)
	if len(r.recent) > RecentSignalsCap {
		r.recent = r.recent[:RecentSignalsCap]
	}
}

// RecentSignals returns the bounded actionable-signal list, newest
// first.
func (r *Registry) RecentSignals() []model.Signal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Signal, len(r.recent))
	copy(out, r.recent)
	return out
}

// RecordTrade bumps the trade counter after a confirmed placement.
func (r *Registry) RecordTrade(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byID[id]; ok {
		cur.Performance.TotalTrades++
	}
}

// RecordClose folds a closed trade's PnL into the strategy performance.
func (r *Registry) RecordClose(id string, pnl float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return
	}
	r.perf[id].applyClose(&cur.Performance, pnl)
}

// PerformanceOf returns a strategy's accumulated stats.
func (r *Registry) PerformanceOf(id string) (Performance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur, ok := r.byID[id]
	if !ok {
		return Performance{}, ErrNotFound
	}
	return cur.Performance, nil
}

func copyConfig(c *StrategyConfig) StrategyConfig {
	out := *c
	if c.LastSignal != nil {
		s := *c.LastSignal
		out.LastSignal = &s
	}
	return out
}
