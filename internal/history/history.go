// Package history keeps bounded per-symbol rolling market state: raw
// price samples and interval-aligned candles. One lock per symbol entry
// keeps appends for different symbols independent; eviction is FIFO at
// fixed caps so memory stays flat regardless of uptime.
package history

import (
	"sync"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// Buffer caps. Raw samples feed indicator windows; candles feed charts.
const (
	RawCap    = 200
	CandleCap = 60
)

// entry is the rolling state for one symbol.
type entry struct {
	mu      sync.Mutex
	samples []model.PriceSample
	candles []model.Candle
}

// Store holds per-symbol rolling buffers keyed by trading symbol.
type Store struct {
	mu       sync.RWMutex
	interval time.Duration
	entries  map[string]*entry

	// Metrics hooks (optional, set externally)
	OnAppend    func(symbol string)
	OnStaleDrop func(symbol string)
}

// New creates a Store building candles on the given interval.
func New(interval time.Duration) *Store {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Store{
		interval: interval,
		entries:  make(map[string]*entry),
	}
}

// Interval returns the candle bucket width.
func (s *Store) Interval() time.Duration { return s.interval }

func (s *Store) entryFor(symbol string) *entry {
	s.mu.RLock()
	e, ok := s.entries[symbol]
	s.mu.RUnlock()
	if ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[symbol]; ok {
		return e
	}
	e = &entry{}
	s.entries[symbol] = e
	return e
}

// Append folds one sample into the symbol's raw buffer and candle set.
// Samples older than the active candle bucket update nothing but the raw
// buffer is still appended in arrival order; a sample whose bucket
// precedes the active one is dropped from the candle path so candle
// periodStart stays non-decreasing.
func (s *Store) Append(symbol string, sample model.PriceSample) {
	e := s.entryFor(symbol)

	e.mu.Lock()
	e.samples = append(e.samples, sample)
	if len(e.samples) > RawCap {
		copy(e.samples, e.samples[len(e.samples)-RawCap:])
		e.samples = e.samples[:RawCap]
	}
	stale := e.applyCandleLocked(symbol, sample, s.interval)
	e.mu.Unlock()

	if s.OnAppend != nil {
		s.OnAppend(symbol)
	}
	if stale && s.OnStaleDrop != nil {
		s.OnStaleDrop(symbol)
	}
}

// applyCandleLocked updates the candle set for one sample. Returns true
// when the sample was stale for the candle path (older bucket, dropped).
func (e *entry) applyCandleLocked(symbol string, sample model.PriceSample, interval time.Duration) bool {
	bucket := sample.At.UTC().Truncate(interval)

	if n := len(e.candles); n > 0 {
		last := &e.candles[n-1]
		if last.Start.Equal(bucket) {
			last.Apply(sample)
			return false
		}
		if bucket.Before(last.Start) {
			return true
		}
	}

	e.candles = append(e.candles, model.Candle{
		Symbol: symbol,
		Start:  bucket,
		Open:   sample.Price,
		High:   sample.Price,
		Low:    sample.Price,
		Close:  sample.Price,
		Volume: sample.Volume,
	})
	if len(e.candles) > CandleCap {
		copy(e.candles, e.candles[len(e.candles)-CandleCap:])
		e.candles = e.candles[:CandleCap]
	}
	return false
}

// Len returns the raw sample count for a symbol.
func (s *Store) Len(symbol string) int {
	e := s.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.samples)
}

// Prices returns a snapshot of the symbol's raw prices, oldest first.
func (s *Store) Prices(symbol string) []float64 {
	e := s.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]float64, len(e.samples))
	for i, sm := range e.samples {
		out[i] = sm.Price
	}
	return out
}

// Volumes returns a snapshot of the symbol's raw volumes, oldest first.
func (s *Store) Volumes(symbol string) []int64 {
	e := s.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int64, len(e.samples))
	for i, sm := range e.samples {
		out[i] = sm.Volume
	}
	return out
}

// Series returns price and volume snapshots in one lock acquisition.
func (s *Store) Series(symbol string) (prices []float64, volumes []int64) {
	e := s.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	prices = make([]float64, len(e.samples))
	volumes = make([]int64, len(e.samples))
	for i, sm := range e.samples {
		prices[i] = sm.Price
		volumes[i] = sm.Volume
	}
	return prices, volumes
}

// Samples returns a snapshot of the symbol's raw samples, oldest first.
func (s *Store) Samples(symbol string) []model.PriceSample {
	e := s.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.PriceSample, len(e.samples))
	copy(out, e.samples)
	return out
}

// Candles returns a snapshot of the symbol's candles, oldest first. The
// last candle may still be forming.
func (s *Store) Candles(symbol string) []model.Candle {
	e := s.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Candle, len(e.candles))
	copy(out, e.candles)
	return out
}

// Symbols lists every symbol that has received at least one sample.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for sym := range s.entries {
		out = append(out, sym)
	}
	return out
}
