package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// TradePublisher streams executed orders to a Kafka topic so external
// systems (journaling, analytics) can consume them. Writes are async;
// a broker outage must not stall order flow.
type TradePublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewTradePublisher creates a publisher for the given brokers and topic.
func NewTradePublisher(brokers []string, topic string) (*TradePublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: brokers are required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Gzip,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		BatchTimeout: time.Second,
		Async:        true,
	}
	return &TradePublisher{writer: writer, topic: topic}, nil
}

// Publish sends one order event, keyed by symbol so a partition sees
// each symbol's orders in sequence.
func (p *TradePublisher) Publish(ctx context.Context, order model.Order) error {
	value, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("kafka: marshal order: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(order.Request.TradingSymbol),
		Value: value,
		Time:  time.Now(),
	})
}

// Close flushes and closes the underlying writer.
func (p *TradePublisher) Close() error {
	return p.writer.Close()
}
