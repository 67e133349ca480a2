package model

import "math"

// NSETick is the minimum price increment on NSE equities, in rupees.
const NSETick = 0.05

// RoundToTick snaps a price to the nearest exchange tick. Stop-loss and
// take-profit prices derived from percentage offsets land between
// ticks; the broker rejects those.
func RoundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	return math.Round(price/tick) * tick
}

// RoundPrice snaps a price to the NSE tick.
func RoundPrice(price float64) float64 {
	return RoundToTick(price, NSETick)
}
