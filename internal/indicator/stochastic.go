package indicator

// StochasticK returns %K over the trailing window: the position of the
// latest price between the window low and high, scaled to 0-100. A flat
// window (high == low) returns the neutral 50.
func StochasticK(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return NeutralStochastic
	}
	start := len(prices) - period
	if period <= 0 || start < 0 {
		start = 0
	}
	window := prices[start:]
	lo, hi := window[0], window[0]
	for _, p := range window[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi == lo {
		return NeutralStochastic
	}
	cur := prices[len(prices)-1]
	return (cur - lo) / (hi - lo) * 100
}

// StochasticD is defined identically to %K: there is no separate
// smoothing pass over %K values.
func StochasticD(prices []float64, period int) float64 {
	return StochasticK(prices, period)
}
