package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/pkg/upstox"
)

// UpstoxSource fetches live quotes from the broker. The broker API is
// keyed by instrument key ("NSE_EQ|ISIN"), so symbols must be
// registered with their keys before the first fetch.
type UpstoxSource struct {
	client *upstox.Client

	mu          sync.RWMutex
	instruments map[string]string // symbol → instrument key
}

// NewUpstoxSource creates a source over the broker client.
func NewUpstoxSource(client *upstox.Client, instruments map[string]string) *UpstoxSource {
	s := &UpstoxSource{
		client:      client,
		instruments: make(map[string]string, len(instruments)),
	}
	for sym, key := range instruments {
		s.instruments[sym] = key
	}
	return s
}

// Register maps a symbol to its broker instrument key.
func (s *UpstoxSource) Register(symbol, instrumentKey string) {
	s.mu.Lock()
	s.instruments[symbol] = instrumentKey
	s.mu.Unlock()
}

// FetchQuote implements model.QuoteSource.
func (s *UpstoxSource) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	s.mu.RLock()
	key, ok := s.instruments[symbol]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("marketdata: no instrument key registered for %s", symbol)
	}

	fq, err := s.client.GetFullQuote(ctx, key)
	if err != nil {
		return nil, err
	}

	prevClose := fq.LastPrice - fq.NetChange
	changePct := 0.0
	if prevClose != 0 {
		changePct = fq.NetChange / prevClose * 100
	}

	at := time.Now()
	if ts, err := time.Parse(time.RFC3339, fq.Timestamp); err == nil {
		at = ts
	}

	return &model.Quote{
		Symbol:          symbol,
		InstrumentToken: key,
		Price:           fq.LastPrice,
		Open:            fq.OHLC.Open,
		High:            fq.OHLC.High,
		Low:             fq.OHLC.Low,
		Volume:          fq.Volume,
		Change:          fq.NetChange,
		ChangePercent:   changePct,
		At:              at,
	}, nil
}
