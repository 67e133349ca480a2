package indicator

import "math"

// Volatility returns the mean absolute close-to-close change over the
// last `period` deltas, in price units. It is a volatility proxy, not a
// true-range ATR: no high/low data is consulted. Fewer than two prices
// yield 0; a shorter history averages over the deltas that exist.
func Volatility(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < 2 {
		return 0
	}
	start := len(prices) - period - 1
	if start < 0 {
		start = 0
	}
	var sum float64
	n := 0
	for i := start + 1; i < len(prices); i++ {
		sum += math.Abs(prices[i] - prices[i-1])
		n++
	}
	return sum / float64(n)
}
