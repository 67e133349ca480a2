package model

import (
	"encoding/json"
	"time"
)

// Candle is an interval-aligned OHLCV bar for a single symbol.
// Start is the bucket start time (UTC, aligned to the history interval).
type Candle struct {
	Symbol string    `json:"symbol"`
	Start  time.Time `json:"start"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Apply folds a sample into the candle, widening high/low and moving close.
func (c *Candle) Apply(s PriceSample) {
	if s.Price > c.High {
		c.High = s.Price
	}
	if s.Price < c.Low {
		c.Low = s.Price
	}
	c.Close = s.Price
	c.Volume += s.Volume
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}
