package model

// Instrument describes a tradeable symbol and its broker identifiers.
type Instrument struct {
	Symbol          string  `json:"symbol"`
	InstrumentToken string  `json:"instrumentToken"`
	Exchange        string  `json:"exchange"` // NSE_EQ, NSE_FO, BSE_EQ
	Name            string  `json:"name"`
	LotSize         int     `json:"lotSize"`
	TickSize        float64 `json:"tickSize"` // minimum price movement in rupees
}
