package indicator

import "math"

// Bollinger returns the upper, middle and lower bands over the trailing
// window. Middle is SMA(period); the half-width is mult population
// standard deviations (divisor N, not N-1). Input shorter than the
// period collapses all three bands onto the latest price.
func Bollinger(prices []float64, period int, mult float64) (upper, middle, lower float64) {
	if len(prices) == 0 {
		return 0, 0, 0
	}
	if period <= 0 || len(prices) < period {
		p := prices[len(prices)-1]
		return p, p, p
	}
	window := prices[len(prices)-period:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	middle = sum / float64(period)
	var variance float64
	for _, p := range window {
		d := p - middle
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))
	return middle + mult*sd, middle, middle - mult*sd
}
