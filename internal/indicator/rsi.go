package indicator

// RSI returns the relative strength index computed from the first
// `period` price deltas of the input. This is the seed-window average
// only: gains and losses are NOT re-smoothed across later deltas the way
// canonical Wilder RSI updates them, so on long inputs the value tracks
// the oldest window rather than the latest. Both evaluation paths share
// this single implementation.
//
// Short input (fewer than period deltas) returns the neutral 50. A zero
// average loss saturates the index at 100; a completely flat window also
// returns 100 under the same guard.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return NeutralRSI
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
