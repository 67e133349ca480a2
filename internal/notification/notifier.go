// Package notification delivers trading alerts to external channels
// (Telegram, webhooks) and publishes trade events to Kafka for
// downstream consumers.
package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/internal/status"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Symbol  string     `json:"symbol,omitempty"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier logs alerts instead of delivering them. Useful for
// development and as a fallback when no channel is configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Dispatcher watches the event bus and turns trading events into
// alerts. Delivery is best-effort; a failing backend never blocks the
// trading loop.
type Dispatcher struct {
	events    *bus.Bus
	notifiers []Notifier
	trades    *TradePublisher // optional
}

// NewDispatcher creates a Dispatcher. trades may be nil when Kafka is
// not configured.
func NewDispatcher(events *bus.Bus, trades *TradePublisher, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{events: events, notifiers: notifiers, trades: trades}
}

// Run consumes bus events until ctx is cancelled or the bus closes.
func (d *Dispatcher) Run(ctx context.Context) {
	sub := d.events.Subscribe()
	defer d.events.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			d.handle(ctx, ev)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev bus.Event) {
	switch ev.Type {
	case bus.EventTrade:
		order, ok := ev.Data.(model.Order)
		if !ok {
			return
		}
		if d.trades != nil {
			if err := d.trades.Publish(ctx, order); err != nil {
				log.Printf("[notify] kafka publish failed: %v", err)
			}
		}
		d.send(ctx, Alert{
			Level:  AlertInfo,
			Title:  "Order placed",
			Symbol: order.Request.TradingSymbol,
			Message: fmt.Sprintf("%s %s x%d %s (order %s)",
				order.Request.TransactionType, order.Request.TradingSymbol,
				order.Request.Quantity, order.Request.OrderType, order.OrderID),
		})

	case bus.EventSignal:
		sig, ok := ev.Data.(model.Signal)
		if !ok || !sig.Actionable() {
			return
		}
		d.send(ctx, Alert{
			Level:  AlertInfo,
			Title:  "Signal",
			Symbol: sig.Symbol,
			Message: fmt.Sprintf("%s %s @ %.2f (%s, confidence %.0f)",
				sig.Action, sig.Symbol, sig.Price, sig.Strategy, sig.Confidence),
		})

	case bus.EventLog:
		entry, ok := ev.Data.(status.Entry)
		if !ok || entry.Level != status.LevelError {
			return
		}
		d.send(ctx, Alert{
			Level:   AlertCritical,
			Title:   "Trading error",
			Message: entry.Message,
		})
	}
}

func (d *Dispatcher) send(ctx context.Context, alert Alert) {
	for _, n := range d.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
		}
	}
}
