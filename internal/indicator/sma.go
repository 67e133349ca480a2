package indicator

// SMA returns the simple moving average series for the given period.
// The result holds one value per fully formed window, so it is shorter
// than the input by period-1 entries; nil when the input is shorter
// than the period.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// SMALast returns the most recent SMA value. Input shorter than the
// period falls back to the latest price so warm-up callers see a
// neutral level; empty input yields 0.
func SMALast(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return prices[len(prices)-1]
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}
