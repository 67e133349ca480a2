package model

import (
	"encoding/json"
	"time"
)

// Quote is a point-in-time market snapshot for one symbol as returned by a
// quote source (broker LTP endpoint, Yahoo, or the synthetic walker).
// All prices are in rupees (float64).
type Quote struct {
	Symbol          string    `json:"symbol"`
	InstrumentToken string    `json:"instrumentToken,omitempty"`
	Price           float64   `json:"price"`
	Open            float64   `json:"open"`
	High            float64   `json:"high"`
	Low             float64   `json:"low"`
	Volume          int64     `json:"volume"`
	Change          float64   `json:"change"`         // absolute change vs previous close
	ChangePercent   float64   `json:"changePercent"`
	At              time.Time `json:"timestamp"`      // UTC
}

// JSON returns the JSON-encoded quote (ignoring errors for hot-path usage).
func (q *Quote) JSON() []byte {
	b, _ := json.Marshal(q)
	return b
}

// Sample converts the quote into a history sample.
func (q *Quote) Sample() PriceSample {
	return PriceSample{Price: q.Price, Volume: q.Volume, At: q.At}
}

// PriceSample is one rolling-history data point derived from a quote.
type PriceSample struct {
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"`
	At     time.Time `json:"timestamp"`
}
