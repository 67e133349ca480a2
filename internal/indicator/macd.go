package indicator

// MACD returns the fast-minus-slow EMA delta at the latest price. Only
// the MACD line is computed; there is no signal-line smoothing or
// histogram. Empty input yields 0.
func MACD(prices []float64, fastPeriod, slowPeriod int) float64 {
	if len(prices) == 0 {
		return 0
	}
	return EMALast(prices, fastPeriod) - EMALast(prices, slowPeriod)
}
