package model

import "context"

// ── Ports ──
// Small interfaces that decouple the trading loop from concrete
// implementations (broker HTTP client, Yahoo source, synthetic walker).

// QuoteSource fetches the latest quote for one symbol. Implementations
// return an error, never a partial quote, when the upstream call fails.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}

// Broker places and cancels orders with the brokerage.
type Broker interface {
	// PlaceOrder submits the order and returns the broker acknowledgement.
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderAck, error)

	// CancelOrder cancels an open order by broker order id.
	CancelOrder(ctx context.Context, orderID string) error
}
