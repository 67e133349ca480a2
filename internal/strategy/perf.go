package strategy

import "math"

// perfState carries the accumulators behind Performance that the API
// never exposes: running equity, its peak, and the per-trade PnL series
// used for the Sharpe ratio.
type perfState struct {
	equity  float64
	peak    float64
	returns []float64
}

func (ps *perfState) applyClose(perf *Performance, pnl float64) {
	ps.returns = append(ps.returns, pnl)
	perf.TotalPnL += pnl
	if pnl > 0 {
		perf.Wins++
	}
	perf.WinRate = float64(perf.Wins) / float64(len(ps.returns)) * 100

	ps.equity += pnl
	if ps.equity > ps.peak {
		ps.peak = ps.equity
	}
	if dd := ps.peak - ps.equity; dd > perf.MaxDrawdown {
		perf.MaxDrawdown = dd
	}
	perf.SharpeRatio = sharpe(ps.returns)
}

// sharpe is mean/stddev (population) of per-trade PnL. Fewer than two
// trades, or a zero spread, yield 0.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(returns)))
	if sd == 0 {
		return 0
	}
	return mean / sd
}
