// Package marketdata provides the pluggable quote sources (broker REST,
// Yahoo fallback, synthetic walk) and the Poller that sweeps them into
// the history store, the quote cache, and the event bus.
package marketdata

import (
	"context"
	"log"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/history"
	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// Poller fetches quotes for a fixed watchlist on a fixed period. One
// failed symbol is logged and skipped; the sweep continues.
type Poller struct {
	source   model.QuoteSource
	history  *history.Store
	cache    *Cache
	events   *bus.Bus
	interval time.Duration
	symbols  []string

	// OnFetchError is called per failed symbol fetch.
	OnFetchError func(symbol string, err error)
}

// NewPoller wires a sweep loop. history, cache, and events may each be
// nil when a consumer is not wanted.
func NewPoller(source model.QuoteSource, hist *history.Store, cache *Cache, events *bus.Bus, interval time.Duration, symbols []string) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		source:   source,
		history:  hist,
		cache:    cache,
		events:   events,
		interval: interval,
		symbols:  append([]string(nil), symbols...),
	}
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("[marketdata] poller started: %d symbols every %s", len(p.symbols), p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[marketdata] poller stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	for _, symbol := range p.symbols {
		if ctx.Err() != nil {
			return
		}
		quote, err := p.source.FetchQuote(ctx, symbol)
		if err != nil {
			log.Printf("[marketdata] ⚠️ quote fetch failed for %s: %v", symbol, err)
			if p.OnFetchError != nil {
				p.OnFetchError(symbol, err)
			}
			continue
		}
		p.accept(*quote)
	}
}

func (p *Poller) accept(q model.Quote) {
	if p.cache != nil {
		p.cache.Put(q)
	}
	if p.history != nil {
		p.history.Append(q.Symbol, q.Sample())
	}
	if p.events != nil {
		p.events.Publish(bus.New(bus.EventQuote, q))
	}
}
