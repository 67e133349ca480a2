package model

import "time"

// Transaction/order/product/validity values follow the broker wire format
// (Upstox API v2). Requests marshal to the exact field names it expects.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"

	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"
	OrderTypeSL     = "SL"
	OrderTypeSLM    = "SL-M"

	ProductIntraday = "I"
	ProductDelivery = "D"

	ValidityDay = "DAY"
	ValidityIOC = "IOC"
)

// Order lifecycle statuses as tracked locally.
const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusComplete  = "COMPLETE"
	OrderStatusRejected  = "REJECTED"
	OrderStatusCancelled = "CANCELLED"
)

// OrderRequest is the broker order placement payload.
type OrderRequest struct {
	TradingSymbol     string  `json:"trading_symbol"`
	InstrumentToken   string  `json:"instrument_token"`
	Quantity          int64   `json:"quantity"`
	Price             float64 `json:"price"` // limit price, 0 for market
	OrderType         string  `json:"order_type"`
	TransactionType   string  `json:"transaction_type"`
	Product           string  `json:"product"`
	Validity          string  `json:"validity"`
	TriggerPrice      float64 `json:"trigger_price,omitempty"`
	DisclosedQuantity int64   `json:"disclosed_quantity,omitempty"`
	Tag               string  `json:"tag,omitempty"`

	// RefPrice is the last traded price at request time. Market orders
	// carry Price 0 on the wire; the paper broker fills them at this
	// reference instead. Never sent to the broker.
	RefPrice float64 `json:"-"`
}

// OrderAck is the broker acknowledgement for a placed order.
type OrderAck struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Order is a placed order as tracked locally for the session.
type Order struct {
	OrderID  string       `json:"orderId"`
	Request  OrderRequest `json:"request"`
	Status   string       `json:"status"`
	AvgPrice float64      `json:"avgPrice,omitempty"` // fill average, paper fills only
	PlacedAt time.Time    `json:"placedAt"`
}
