package execution

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// Fill is one simulated execution.
type Fill struct {
	OrderID   string             `json:"orderId"`
	Request   model.OrderRequest `json:"request"`
	FillPrice float64            `json:"fillPrice"`
	Slippage  float64            `json:"slippage"` // rupees per share, always adverse
	FilledAt  time.Time          `json:"filledAt"`
}

// PaperBroker implements model.Broker without touching a real broker.
// Every order is acknowledged immediately and filled at the request
// price shifted by slippageBps in the adverse direction: buys fill
// higher, sells fill lower. Used whenever live trading is off.
type PaperBroker struct {
	mu          sync.RWMutex
	fills       []Fill
	cancels     []string
	slippageBps float64

	newID func() string
	now   func() time.Time
}

// NewPaperBroker creates a paper broker with the given slippage in
// basis points (5 = 0.05%).
func NewPaperBroker(slippageBps float64) *PaperBroker {
	return &PaperBroker{
		slippageBps: slippageBps,
		newID:       func() string { return "PAPER-" + uuid.NewString()[:8] },
		now:         time.Now,
	}
}

// PlaceOrder simulates an immediate fill.
func (p *PaperBroker) PlaceOrder(_ context.Context, req model.OrderRequest) (*model.OrderAck, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("paper: quantity must be positive, got %d", req.Quantity)
	}

	refPrice := req.Price
	if refPrice == 0 {
		refPrice = req.TriggerPrice
	}
	if refPrice == 0 {
		refPrice = req.RefPrice
	}
	slip := 0.0
	if refPrice > 0 && p.slippageBps > 0 {
		slip = refPrice * p.slippageBps / 10000
	}
	fillPrice := refPrice
	if req.TransactionType == model.TransactionBuy {
		fillPrice += slip
	} else {
		fillPrice -= slip
	}

	p.mu.Lock()
	fill := Fill{
		OrderID:   p.newID(),
		Request:   req,
		FillPrice: fillPrice,
		Slippage:  slip,
		FilledAt:  p.now(),
	}
	p.fills = append(p.fills, fill)
	p.mu.Unlock()

	log.Printf("[paper] %s %s x%d %s @ %.2f (slip %.2f) order=%s tag=%s",
		req.TransactionType, req.TradingSymbol, req.Quantity, req.OrderType,
		fillPrice, slip, fill.OrderID, req.Tag)
	return &model.OrderAck{OrderID: fill.OrderID, Status: model.OrderStatusComplete}, nil
}

// CancelOrder records the cancellation; paper orders are already
// filled, so this only matters for the audit trail.
func (p *PaperBroker) CancelOrder(_ context.Context, orderID string) error {
	p.mu.Lock()
	p.cancels = append(p.cancels, orderID)
	p.mu.Unlock()
	return nil
}

// Fills returns a snapshot of all simulated fills, oldest first.
func (p *PaperBroker) Fills() []Fill {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}

// Cancels returns the order ids cancellation was requested for.
func (p *PaperBroker) Cancels() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.cancels))
	copy(out, p.cancels)
	return out
}
