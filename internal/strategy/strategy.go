// Package strategy holds the strategy catalog and the two signal
// evaluation styles: per-type threshold rules and indicator vote
// counting. Evaluators are pure; the Registry owns all mutable state.
package strategy

import (
	"fmt"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// StrategyType selects the decision rule applied to a strategy's market
// view. The first four use threshold rules; indicator_vote uses the
// vote-counting evaluator.
type StrategyType string

const (
	TypeEMACrossover  StrategyType = "ema_crossover"
	TypeRSIOversold   StrategyType = "rsi_oversold"
	TypeSMATrend      StrategyType = "sma_trend"
	TypeBollinger     StrategyType = "bollinger_bands"
	TypeIndicatorVote StrategyType = "indicator_vote"
)

// Params is the typed parameter record for a strategy. Fields are
// grouped by the strategy type that reads them; execution fields apply
// to every type. Zero values fall back to the defaults in normalized().
type Params struct {
	// ema_crossover / indicator_vote
	FastPeriod int `json:"fastPeriod,omitempty" yaml:"fast_period"`
	SlowPeriod int `json:"slowPeriod,omitempty" yaml:"slow_period"`

	// rsi_oversold / indicator_vote
	RSIPeriod  int     `json:"rsiPeriod,omitempty" yaml:"rsi_period"`
	Oversold   float64 `json:"oversoldLevel,omitempty" yaml:"oversold"`
	Overbought float64 `json:"overboughtLevel,omitempty" yaml:"overbought"`

	// sma_trend
	ShortPeriod int     `json:"shortPeriod,omitempty" yaml:"short_period"`
	LongPeriod  int     `json:"longPeriod,omitempty" yaml:"long_period"`
	Threshold   float64 `json:"threshold,omitempty" yaml:"threshold"` // percent

	// bollinger_bands / indicator_vote
	BBPeriod      int     `json:"bbPeriod,omitempty" yaml:"bb_period"`
	BBStdDev      float64 `json:"bbStdDev,omitempty" yaml:"bb_std_dev"`
	MeanReversion bool    `json:"meanReversion,omitempty" yaml:"mean_reversion"`

	// indicator_vote volume confirmation
	VolumePeriod int     `json:"volumePeriod,omitempty" yaml:"volume_period"`
	VolumeFactor float64 `json:"volumeFactor,omitempty" yaml:"volume_factor"`

	// indicator_vote MACD check. Kept separate from fast/slow so the
	// MACD vote is not a duplicate of the EMA-side vote.
	MACDFast int `json:"macdFast,omitempty" yaml:"macd_fast"`
	MACDSlow int `json:"macdSlow,omitempty" yaml:"macd_slow"`

	// execution
	Quantity   int64   `json:"quantity" yaml:"quantity" default:"1"`
	StopLoss   float64 `json:"stopLoss" yaml:"stop_loss" default:"1.0"`     // percent
	TakeProfit float64 `json:"takeProfit" yaml:"take_profit" default:"2.0"` // percent
	OrderType  string  `json:"orderType,omitempty" yaml:"order_type" default:"MARKET"`
	Product    string  `json:"product,omitempty" yaml:"product" default:"I"`
}

// normalized returns a copy with zero-valued fields replaced by safe
// defaults, so malformed parameters degrade to textbook settings instead
// of dividing by zero inside an evaluation cycle.
func (p Params) normalized() Params {
	if p.FastPeriod <= 0 {
		p.FastPeriod = 9
	}
	if p.SlowPeriod <= 0 {
		p.SlowPeriod = 21
	}
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = 14
	}
	if p.Oversold <= 0 {
		p.Oversold = 30
	}
	if p.Overbought <= 0 {
		p.Overbought = 70
	}
	if p.ShortPeriod <= 0 {
		p.ShortPeriod = 10
	}
	if p.LongPeriod <= 0 {
		p.LongPeriod = 20
	}
	if p.Threshold <= 0 {
		p.Threshold = 0.5
	}
	if p.BBPeriod <= 0 {
		p.BBPeriod = 20
	}
	if p.BBStdDev <= 0 {
		p.BBStdDev = 2
	}
	if p.VolumePeriod <= 0 {
		p.VolumePeriod = 20
	}
	if p.VolumeFactor <= 0 {
		p.VolumeFactor = 1.5
	}
	if p.MACDFast <= 0 {
		p.MACDFast = 12
	}
	if p.MACDSlow <= 0 {
		p.MACDSlow = 26
	}
	if p.Quantity <= 0 {
		p.Quantity = 1
	}
	if p.StopLoss <= 0 {
		p.StopLoss = 1.0
	}
	if p.TakeProfit <= 0 {
		p.TakeProfit = 2.0
	}
	if p.OrderType == "" {
		p.OrderType = model.OrderTypeMarket
	}
	if p.Product == "" {
		p.Product = model.ProductIntraday
	}
	return p
}

// Performance accumulates per-strategy trading statistics. WinRate is a
// percentage; MaxDrawdown is the deepest equity dip below its running
// peak (reported as a positive number); SharpeRatio is mean/stddev of
// per-trade PnL.
type Performance struct {
	TotalTrades int     `json:"totalTrades" yaml:"-"`
	Wins        int     `json:"wins" yaml:"-"`
	WinRate     float64 `json:"winRate" yaml:"-"`
	TotalPnL    float64 `json:"totalPnL" yaml:"-"`
	MaxDrawdown float64 `json:"maxDrawdown" yaml:"-"`
	SharpeRatio float64 `json:"sharpeRatio" yaml:"-"`
}

// StrategyConfig is one catalog entry. Performance and LastSignal are
// maintained by the Registry, never by API patches.
type StrategyConfig struct {
	ID              string        `json:"id" yaml:"id" validate:"required"`
	Name            string        `json:"name" yaml:"name" validate:"required"`
	Symbol          string        `json:"symbol" yaml:"symbol" validate:"required"`
	InstrumentToken string        `json:"instrumentToken" yaml:"instrument_token"`
	Type            StrategyType  `json:"type" yaml:"type" validate:"required"`
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Params          Params        `json:"parameters" yaml:"parameters"`
	Performance     Performance   `json:"performance" yaml:"-"`
	LastSignal      *model.Signal `json:"lastSignal,omitempty" yaml:"-"`
	CreatedAt       time.Time     `json:"createdAt" yaml:"-"`
	UpdatedAt       time.Time     `json:"updatedAt" yaml:"-"`
}

// Validate rejects configs the evaluators cannot run.
func (c *StrategyConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("strategy id is required")
	}
	if c.Symbol == "" {
		return fmt.Errorf("strategy %s: symbol is required", c.ID)
	}
	switch c.Type {
	case TypeEMACrossover, TypeRSIOversold, TypeSMATrend, TypeBollinger, TypeIndicatorVote:
	default:
		return fmt.Errorf("strategy %s: unknown type %q", c.ID, c.Type)
	}
	if c.Params.Quantity < 0 {
		return fmt.Errorf("strategy %s: quantity must not be negative", c.ID)
	}
	if c.Params.StopLoss < 0 || c.Params.TakeProfit < 0 {
		return fmt.Errorf("strategy %s: stopLoss/takeProfit must not be negative", c.ID)
	}
	return nil
}
