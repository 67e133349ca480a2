package model

import "time"

// Position is an open trade tracked for exit conditions. Qty is always
// positive; Side carries the entry direction.
type Position struct {
	ID              string       `json:"id"`
	StrategyID      string       `json:"strategyId"`
	Symbol          string       `json:"symbol"`
	InstrumentToken string       `json:"instrumentToken"`
	Side            SignalAction `json:"side"`
	Qty             int64        `json:"quantity"`
	EntryPrice      float64      `json:"entryPrice"`
	CurrentPrice    float64      `json:"currentPrice"`
	PnL             float64      `json:"pnl"`
	PnLPercent      float64      `json:"pnlPercent"`
	OrderID         string       `json:"orderId"`
	SLOrderID       string       `json:"slOrderId,omitempty"`
	TPOrderID       string       `json:"tpOrderId,omitempty"`
	OpenedAt        time.Time    `json:"openedAt"`
}

// Mark updates the position against the latest price, recomputing PnL.
// Short positions profit when price falls.
func (p *Position) Mark(price float64) {
	p.CurrentPrice = price
	diff := price - p.EntryPrice
	if p.Side == ActionSell {
		diff = -diff
	}
	p.PnL = diff * float64(p.Qty)
	if p.EntryPrice != 0 {
		p.PnLPercent = diff / p.EntryPrice * 100
	}
}

// ExitSide returns the transaction type that closes this position.
func (p *Position) ExitSide() string {
	if p.Side == ActionBuy {
		return TransactionSell
	}
	return TransactionBuy
}
