package marketdata

import (
	"sort"
	"sync"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// Cache holds the latest quote per symbol for the dashboard endpoints.
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]model.Quote
}

// NewCache creates an empty quote cache.
func NewCache() *Cache {
	return &Cache{quotes: make(map[string]model.Quote)}
}

// Put stores the latest quote for its symbol.
func (c *Cache) Put(q model.Quote) {
	c.mu.Lock()
	c.quotes[q.Symbol] = q
	c.mu.Unlock()
}

// Get returns the latest quote for symbol.
func (c *Cache) Get(symbol string) (model.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[symbol]
	return q, ok
}

// All returns every cached quote, sorted by symbol for stable output.
func (c *Cache) All() []model.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Quote, 0, len(c.quotes))
	for _, q := range c.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
