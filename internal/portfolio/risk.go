package portfolio

import (
	"log"
	"sync"
)

// RiskLimits defines configurable risk thresholds. A non-positive
// value disables that check: only the per-order quantity cap is on by
// default, the portfolio-wide limits are operator opt-ins.
type RiskLimits struct {
	MaxPositionQty   int     `json:"maxPositionQty"`   // max qty per order
	MaxDailyLoss     float64 `json:"maxDailyLoss"`     // max daily loss in rupees, 0 = off
	MaxOpenPositions int     `json:"maxOpenPositions"` // max concurrent positions, 0 = off
	MaxDrawdownPct   float64 `json:"maxDrawdownPct"`   // max drawdown percentage (0-100), 0 = off
}

// DefaultRiskLimits caps the per-order quantity and leaves the
// portfolio-wide limits off.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{MaxPositionQty: 100}
}

// RiskManager validates entries against risk limits and tracks equity.
type RiskManager struct {
	mu     sync.RWMutex
	limits RiskLimits
	book   *Book

	dailyPnL   float64
	equity     float64
	peakEquity float64
}

// NewRiskManager creates a RiskManager over the book with the given
// limits and starting equity.
func NewRiskManager(limits RiskLimits, book *Book, initialEquity float64) *RiskManager {
	return &RiskManager{
		limits:     limits,
		book:       book,
		equity:     initialEquity,
		peakEquity: initialEquity,
	}
}

// CanTrade checks whether a new entry for the strategy would violate a
// limit. Returns false with the blocking reason.
func (rm *RiskManager) CanTrade(strategyID string, qty int) (bool, string) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	if rm.limits.MaxPositionQty > 0 && qty > rm.limits.MaxPositionQty {
		return false, "position size exceeds limit"
	}
	if rm.limits.MaxOpenPositions > 0 {
		if _, holding := rm.book.ForStrategy(strategyID); !holding {
			if rm.book.Count() >= rm.limits.MaxOpenPositions {
				return false, "max open positions reached"
			}
		}
	}
	if rm.limits.MaxDailyLoss > 0 && rm.dailyPnL < -rm.limits.MaxDailyLoss {
		return false, "max daily loss reached"
	}
	if rm.limits.MaxDrawdownPct > 0 && rm.peakEquity > 0 {
		drawdown := (rm.peakEquity - rm.equity) / rm.peakEquity * 100
		if drawdown > rm.limits.MaxDrawdownPct {
			return false, "max drawdown exceeded"
		}
	}
	return true, ""
}

// RecordPnL folds a realized P&L into the daily and equity tracking.
func (rm *RiskManager) RecordPnL(pnl float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.dailyPnL += pnl
	rm.equity += pnl
	if rm.equity > rm.peakEquity {
		rm.peakEquity = rm.equity
	}
	log.Printf("[risk] daily P&L: %.2f, equity: %.2f, peak: %.2f", rm.dailyPnL, rm.equity, rm.peakEquity)
}

// ResetDaily resets the daily P&L counter (call at market open).
func (rm *RiskManager) ResetDaily() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.dailyPnL = 0
}

// RiskStatus is the current risk view for the dashboard.
type RiskStatus struct {
	DailyPnL    float64    `json:"dailyPnl"`
	Equity      float64    `json:"equity"`
	PeakEquity  float64    `json:"peakEquity"`
	DrawdownPct float64    `json:"drawdownPct"`
	Limits      RiskLimits `json:"limits"`
}

// Status returns the current risk status.
func (rm *RiskManager) Status() RiskStatus {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	drawdown := 0.0
	if rm.peakEquity > 0 {
		drawdown = (rm.peakEquity - rm.equity) / rm.peakEquity * 100
	}
	return RiskStatus{
		DailyPnL:    rm.dailyPnL,
		Equity:      rm.equity,
		PeakEquity:  rm.peakEquity,
		DrawdownPct: drawdown,
		Limits:      rm.limits,
	}
}
