package strategy

import (
	"fmt"

	"github.com/InfinixInfotech/Trading-App/internal/indicator"
	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// VoteEvaluator accumulates independent direction votes from five
// indicator checks and acts only when at least three agree. Strength is
// votes out of five, scaled onto the 0-100 confidence range, so the
// possible confidences are 60, 80 and 100.
type VoteEvaluator struct{}

const votesRequired = 3

func (VoteEvaluator) Evaluate(cfg StrategyConfig, view MarketView) model.Signal {
	if len(view.Prices) < MinHistory {
		return hold(cfg, view, fmt.Sprintf("insufficient history: %d/%d samples", len(view.Prices), MinHistory))
	}
	p := cfg.Params.normalized()
	prices := view.Prices
	price := view.Price

	var buy, sell []string

	// 1. RSI extreme.
	rsi := indicator.RSI(prices, p.RSIPeriod)
	switch {
	case rsi < p.Oversold:
		buy = append(buy, fmt.Sprintf("RSI %.1f oversold", rsi))
	case rsi > p.Overbought:
		sell = append(sell, fmt.Sprintf("RSI %.1f overbought", rsi))
	}

	// 2. EMA side: which side of the slow line the fast line sits on.
	fast := indicator.EMALast(prices, p.FastPeriod)
	slow := indicator.EMALast(prices, p.SlowPeriod)
	switch {
	case fast > slow:
		buy = append(buy, fmt.Sprintf("EMA(%d) above EMA(%d)", p.FastPeriod, p.SlowPeriod))
	case fast < slow:
		sell = append(sell, fmt.Sprintf("EMA(%d) below EMA(%d)", p.FastPeriod, p.SlowPeriod))
	}

	// 3. Volume confirmation: heavy volume backs the latest move.
	ratio := indicator.VolumeRatio(view.Volumes, p.VolumePeriod)
	if ratio > p.VolumeFactor && len(prices) >= 2 {
		switch {
		case prices[len(prices)-1] > prices[len(prices)-2]:
			buy = append(buy, fmt.Sprintf("volume ratio %.2f confirms up move", ratio))
		case prices[len(prices)-1] < prices[len(prices)-2]:
			sell = append(sell, fmt.Sprintf("volume ratio %.2f confirms down move", ratio))
		}
	}

	// 4. Bollinger position.
	upper, _, lower := indicator.Bollinger(prices, p.BBPeriod, p.BBStdDev)
	switch {
	case price <= lower:
		buy = append(buy, fmt.Sprintf("price %.2f at lower band %.2f", price, lower))
	case price >= upper:
		sell = append(sell, fmt.Sprintf("price %.2f at upper band %.2f", price, upper))
	}

	// 5. MACD sign.
	macd := indicator.MACD(prices, p.MACDFast, p.MACDSlow)
	switch {
	case macd > 0:
		buy = append(buy, fmt.Sprintf("MACD %.4f positive", macd))
	case macd < 0:
		sell = append(sell, fmt.Sprintf("MACD %.4f negative", macd))
	}

	// Each check votes for at most one side, so both sides can never
	// reach the requirement in the same evaluation.
	if len(buy) >= votesRequired {
		return emit(cfg, view, model.ActionBuy, float64(len(buy))/5*100, buy...)
	}
	if len(sell) >= votesRequired {
		return emit(cfg, view, model.ActionSell, float64(len(sell))/5*100, sell...)
	}
	return hold(cfg, view, fmt.Sprintf("%d buy / %d sell votes, need %d", len(buy), len(sell), votesRequired))
}
