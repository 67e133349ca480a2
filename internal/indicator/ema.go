package indicator

// EMA returns the exponential moving average series, seeded with the
// first price. The output is index-aligned with the input (one value per
// price, no warm-up truncation); crossover logic relies on being able to
// compare it element-for-element against other series of the same
// length, so the seeding and alignment must not change.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) == 0 {
		return nil
	}
	mult := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = (prices[i]-out[i-1])*mult + out[i-1]
	}
	return out
}

// EMALast returns the most recent EMA value, 0 on empty input.
func EMALast(prices []float64, period int) float64 {
	s := EMA(prices, period)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}
