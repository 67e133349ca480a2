package model

import "time"

// SignalAction is the direction a strategy evaluation resolved to.
type SignalAction string

const (
	ActionBuy  SignalAction = "BUY"
	ActionSell SignalAction = "SELL"
	ActionHold SignalAction = "HOLD"
)

// Signal is one strategy evaluation outcome. Confidence is on a 0-100
// scale; HOLD signals always carry confidence 0.
type Signal struct {
	StrategyID string       `json:"strategyId"`
	Strategy   string       `json:"strategy,omitempty"` // display name
	Symbol     string       `json:"symbol"`
	Action     SignalAction `json:"action"`
	Confidence float64      `json:"confidence"`
	Price      float64      `json:"price"`
	At         time.Time    `json:"timestamp"`
	Conditions []string     `json:"conditions,omitempty"` // human-readable reasons
}

// Actionable reports whether the signal is a BUY or SELL.
func (s *Signal) Actionable() bool {
	return s.Action == ActionBuy || s.Action == ActionSell
}
