// Package portfolio tracks open positions and portfolio-level P&L, and
// decides when a marked position has breached its exit thresholds.
//
// The book is process-memory only: a restart forgets every open
// position. One strategy holds at most one open position at a time.
package portfolio

import (
	"fmt"
	"sort"
	"sync"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// Book is the in-memory position ledger.
type Book struct {
	mu         sync.RWMutex
	positions  map[string]*model.Position // key = position id (parent order id)
	byStrategy map[string]string          // strategy id → position id

	realized float64
	closed   int
}

// NewBook creates an empty position book.
func NewBook() *Book {
	return &Book{
		positions:  make(map[string]*model.Position),
		byStrategy: make(map[string]string),
	}
}

// Open records a new position. A strategy with an open position cannot
// open another.
func (b *Book) Open(pos model.Position) error {
	if pos.ID == "" {
		return fmt.Errorf("portfolio: position without id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.positions[pos.ID]; dup {
		return fmt.Errorf("portfolio: duplicate position id %s", pos.ID)
	}
	if existing, ok := b.byStrategy[pos.StrategyID]; ok {
		return fmt.Errorf("portfolio: strategy %s already holds position %s", pos.StrategyID, existing)
	}
	p := pos
	b.positions[pos.ID] = &p
	b.byStrategy[pos.StrategyID] = pos.ID
	return nil
}

// Get returns a copy of the position with the given id.
func (b *Book) Get(id string) (model.Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.positions[id]
	if !ok {
		return model.Position{}, false
	}
	return *p, true
}

// ForStrategy returns the strategy's open position, if any.
func (b *Book) ForStrategy(strategyID string) (model.Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.byStrategy[strategyID]
	if !ok {
		return model.Position{}, false
	}
	return *b.positions[id], true
}

// Mark updates every position of the symbol with the latest price and
// returns copies of the marked positions.
func (b *Book) Mark(symbol string, price float64) []model.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	var marked []model.Position
	for _, p := range b.positions {
		if p.Symbol != symbol {
			continue
		}
		p.Mark(price)
		marked = append(marked, *p)
	}
	return marked
}

// SetChildOrders records the stop-loss/take-profit order ids placed for
// the position.
func (b *Book) SetChildOrders(id, slOrderID, tpOrderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[id]
	if !ok {
		return false
	}
	p.SLOrderID = slOrderID
	p.TPOrderID = tpOrderID
	return true
}

// Close removes the position and folds its P&L into the realized
// total. Returns the final state of the position.
func (b *Book) Close(id string) (model.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[id]
	if !ok {
		return model.Position{}, false
	}
	delete(b.positions, id)
	delete(b.byStrategy, p.StrategyID)
	b.realized += p.PnL
	b.closed++
	return *p, true
}

// List returns all open positions, oldest first.
func (b *Book) List() []model.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of open positions.
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.positions)
}

// PnLSummary is the portfolio aggregate for the dashboard.
type PnLSummary struct {
	RealizedPnL   float64 `json:"realizedPnl"`
	UnrealizedPnL float64 `json:"unrealizedPnl"`
	TotalPnL      float64 `json:"totalPnl"`
	OpenPositions int     `json:"openPositions"`
	ClosedTrades  int     `json:"closedTrades"`
}

// Summary computes the aggregate over realized history and open marks.
func (b *Book) Summary() PnLSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := PnLSummary{
		RealizedPnL:   b.realized,
		OpenPositions: len(b.positions),
		ClosedTrades:  b.closed,
	}
	for _, p := range b.positions {
		s.UnrealizedPnL += p.PnL
	}
	s.TotalPnL = s.RealizedPnL + s.UnrealizedPnL
	return s
}

// ShouldExit reports whether a marked position breached its stop-loss
// or take-profit threshold. Thresholds are percentages of entry; a
// non-positive threshold disables that side.
func ShouldExit(pos model.Position, stopLossPct, takeProfitPct float64) (bool, string) {
	if stopLossPct > 0 && pos.PnLPercent <= -stopLossPct {
		return true, "stop-loss"
	}
	if takeProfitPct > 0 && pos.PnLPercent >= takeProfitPct {
		return true, "take-profit"
	}
	return false, ""
}
