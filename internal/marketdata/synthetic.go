package marketdata

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// SyntheticSource serves a random-walk price feed for development and
// demos. Each fetch moves the symbol's price by up to ±StepPct and
// accumulates session OHLC/volume, so consumers see a plausible quote
// shape without any network.
type SyntheticSource struct {
	mu     sync.Mutex
	states map[string]*walkState
	seeds  map[string]float64
	rng    *rand.Rand

	// StepPct is the max per-fetch move in percent, default 0.1.
	StepPct float64

	now func() time.Time
}

type walkState struct {
	price  float64
	open   float64
	high   float64
	low    float64
	volume int64
}

const defaultStartPrice = 1000.00

// NewSynthetic creates a source with per-symbol starting prices.
// Unlisted symbols start at 1000.00.
func NewSynthetic(start map[string]float64) *SyntheticSource {
	seeds := make(map[string]float64, len(start))
	for sym, p := range start {
		seeds[sym] = p
	}
	return &SyntheticSource{
		states:  make(map[string]*walkState),
		seeds:   seeds,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		StepPct: 0.1,
		now:     time.Now,
	}
}

// FetchQuote implements model.QuoteSource. It never fails.
func (s *SyntheticSource) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[symbol]
	if !ok {
		seed := s.seeds[symbol]
		if seed <= 0 {
			seed = defaultStartPrice
		}
		st = &walkState{price: seed, open: seed, high: seed, low: seed}
		s.states[symbol] = st
	}

	// Walk ±StepPct, floor at one paise.
	pct := (s.rng.Float64()*2*s.StepPct - s.StepPct) / 100.0
	st.price *= 1 + pct
	if st.price < 0.01 {
		st.price = 0.01
	}
	if st.price > st.high {
		st.high = st.price
	}
	if st.price < st.low {
		st.low = st.price
	}
	st.volume += int64(s.rng.Intn(100) + 1)

	change := st.price - st.open
	changePct := 0.0
	if st.open != 0 {
		changePct = change / st.open * 100
	}

	return &model.Quote{
		Symbol:        symbol,
		Price:         st.price,
		Open:          st.open,
		High:          st.high,
		Low:           st.low,
		Volume:        st.volume,
		Change:        change,
		ChangePercent: changePct,
		At:            s.now(),
	}, nil
}
