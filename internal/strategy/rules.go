package strategy

import (
	"fmt"
	"math"

	"github.com/InfinixInfotech/Trading-App/internal/indicator"
	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// RuleEvaluator applies the per-type threshold rules. Each rule emits a
// fixed or formula-derived confidence on the 0-100 scale; anything that
// does not fire is a HOLD with confidence 0.
type RuleEvaluator struct{}

func (RuleEvaluator) Evaluate(cfg StrategyConfig, view MarketView) model.Signal {
	if len(view.Prices) < MinHistory {
		return hold(cfg, view, fmt.Sprintf("insufficient history: %d/%d samples", len(view.Prices), MinHistory))
	}
	p := cfg.Params.normalized()
	switch cfg.Type {
	case TypeEMACrossover:
		return evalEMACrossover(cfg, p, view)
	case TypeRSIOversold:
		return evalRSIOversold(cfg, p, view)
	case TypeSMATrend:
		return evalSMATrend(cfg, p, view)
	case TypeBollinger:
		return evalBollinger(cfg, p, view)
	}
	return hold(cfg, view, fmt.Sprintf("no rule for type %q", cfg.Type))
}

// emit builds an actionable signal carrying its trigger descriptions.
func emit(cfg StrategyConfig, view MarketView, action model.SignalAction, confidence float64, conditions ...string) model.Signal {
	return model.Signal{
		StrategyID: cfg.ID,
		Strategy:   cfg.Name,
		Symbol:     cfg.Symbol,
		Action:     action,
		Confidence: confidence,
		Price:      view.Price,
		At:         view.At,
		Conditions: conditions,
	}
}

func evalEMACrossover(cfg StrategyConfig, p Params, view MarketView) model.Signal {
	fast := indicator.EMA(view.Prices, p.FastPeriod)
	slow := indicator.EMA(view.Prices, p.SlowPeriod)
	n := len(view.Prices)
	if n < 2 {
		return hold(cfg, view, "")
	}
	prevFast, prevSlow := fast[n-2], slow[n-2]
	curFast, curSlow := fast[n-1], slow[n-1]

	// A touch (prevFast == prevSlow) is not a crossing; the fast line
	// must come strictly from the other side.
	switch {
	case prevFast < prevSlow && curFast > curSlow:
		return emit(cfg, view, model.ActionBuy, 85,
			fmt.Sprintf("EMA(%d) crossed above EMA(%d)", p.FastPeriod, p.SlowPeriod))
	case prevFast > prevSlow && curFast < curSlow:
		return emit(cfg, view, model.ActionSell, 85,
			fmt.Sprintf("EMA(%d) crossed below EMA(%d)", p.FastPeriod, p.SlowPeriod))
	}
	return hold(cfg, view, "")
}

func evalRSIOversold(cfg StrategyConfig, p Params, view MarketView) model.Signal {
	rsi := indicator.RSI(view.Prices, p.RSIPeriod)
	switch {
	case rsi <= p.Oversold:
		return emit(cfg, view, model.ActionBuy, math.Max(60, 100-rsi),
			fmt.Sprintf("RSI %.1f at or below oversold level %.0f", rsi, p.Oversold))
	case rsi >= p.Overbought:
		return emit(cfg, view, model.ActionSell, math.Max(60, rsi-50),
			fmt.Sprintf("RSI %.1f at or above overbought level %.0f", rsi, p.Overbought))
	}
	return hold(cfg, view, "")
}

func evalSMATrend(cfg StrategyConfig, p Params, view MarketView) model.Signal {
	if view.Price == 0 {
		return hold(cfg, view, "no current price")
	}
	short := indicator.SMALast(view.Prices, p.ShortPeriod)
	long := indicator.SMALast(view.Prices, p.LongPeriod)

	strength := math.Abs(short-long) / view.Price
	gate := p.Threshold / 100
	confidence := math.Min(90, 60+strength*1000)

	switch {
	case short > long && strength > gate:
		return emit(cfg, view, model.ActionBuy, confidence,
			fmt.Sprintf("SMA(%d) %.2f above SMA(%d) %.2f, trend strength %.4f", p.ShortPeriod, short, p.LongPeriod, long, strength))
	case short < long && strength > gate:
		return emit(cfg, view, model.ActionSell, confidence,
			fmt.Sprintf("SMA(%d) %.2f below SMA(%d) %.2f, trend strength %.4f", p.ShortPeriod, short, p.LongPeriod, long, strength))
	}
	return hold(cfg, view, "")
}

func evalBollinger(cfg StrategyConfig, p Params, view MarketView) model.Signal {
	upper, _, lower := indicator.Bollinger(view.Prices, p.BBPeriod, p.BBStdDev)
	price := view.Price

	if p.MeanReversion {
		switch {
		case price <= lower:
			return emit(cfg, view, model.ActionBuy, 80,
				fmt.Sprintf("price %.2f at or below lower band %.2f", price, lower))
		case price >= upper:
			return emit(cfg, view, model.ActionSell, 80,
				fmt.Sprintf("price %.2f at or above upper band %.2f", price, upper))
		}
		return hold(cfg, view, "")
	}

	switch {
	case price > upper:
		return emit(cfg, view, model.ActionBuy, 75,
			fmt.Sprintf("breakout above upper band %.2f", upper))
	case price < lower:
		return emit(cfg, view, model.ActionSell, 75,
			fmt.Sprintf("breakdown below lower band %.2f", lower))
	}
	return hold(cfg, view, "")
}
