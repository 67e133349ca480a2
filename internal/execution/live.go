package execution

import (
	"context"

	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/pkg/upstox"
)

// LiveBroker routes orders to the brokerage API.
type LiveBroker struct {
	client *upstox.Client
}

// NewLiveBroker wraps an authenticated broker client.
func NewLiveBroker(client *upstox.Client) *LiveBroker {
	return &LiveBroker{client: client}
}

func (b *LiveBroker) PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error) {
	ack, err := b.client.PlaceOrder(ctx, upstox.PlaceOrderParams{
		TradingSymbol:   req.TradingSymbol,
		InstrumentToken: req.InstrumentToken,
		Quantity:        int(req.Quantity),
		Price:           req.Price,
		OrderType:       req.OrderType,
		TransactionType: req.TransactionType,
		Product:         req.Product,
		Validity:        req.Validity,
		TriggerPrice:    req.TriggerPrice,
		Tag:             req.Tag,
	})
	if err != nil {
		return nil, err
	}
	return &model.OrderAck{OrderID: ack.OrderID}, nil
}

func (b *LiveBroker) CancelOrder(ctx context.Context, orderID string) error {
	return b.client.CancelOrder(ctx, orderID)
}
