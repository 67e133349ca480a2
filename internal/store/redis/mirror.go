// Package redis mirrors live trading state into Redis so external
// dashboards and scripts can read it. The mirror is write-only: the
// daemon's own state lives in memory and is never loaded back from
// Redis. All writes go through a circuit breaker so a Redis outage
// degrades to dropped mirror writes instead of a stalled pipeline.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/model"
)

const (
	quoteKeyPrefix  = "quote:"
	signalChannel   = "signals"
	defaultQuoteTTL = 30 * time.Minute
)

// MirrorConfig configures the Redis mirror.
type MirrorConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	QuoteTTL time.Duration // 0 uses defaultQuoteTTL

	BreakerMaxFailures int           // 0 uses 5
	BreakerResetAfter  time.Duration // 0 uses 10s
}

// Mirror writes latest quotes and publishes signals to Redis.
type Mirror struct {
	client   *goredis.Client
	breaker  *CircuitBreaker
	quoteTTL time.Duration

	// OnWrite is called after each successful mirror write.
	OnWrite func()
}

// Breaker returns the mirror's circuit breaker.
func (m *Mirror) Breaker() *CircuitBreaker { return m.breaker }

// NewMirror connects to Redis and pings it.
func NewMirror(cfg MirrorConfig) (*Mirror, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	resetAfter := cfg.BreakerResetAfter
	if resetAfter <= 0 {
		resetAfter = 10 * time.Second
	}
	ttl := cfg.QuoteTTL
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Mirror{
		client:   client,
		breaker:  NewCircuitBreaker(maxFailures, resetAfter),
		quoteTTL: ttl,
	}, nil
}

// Run consumes bus events and mirrors them until ctx is cancelled or
// the bus closes.
func (m *Mirror) Run(ctx context.Context, events *bus.Bus) {
	sub := events.Subscribe()
	defer events.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			m.handle(ctx, ev)
		}
	}
}

func (m *Mirror) handle(ctx context.Context, ev bus.Event) {
	switch ev.Type {
	case bus.EventQuote:
		q, ok := ev.Data.(model.Quote)
		if !ok {
			return
		}
		if err := m.MirrorQuote(ctx, q); err != nil && err != ErrCircuitOpen {
			log.Printf("[redis] quote mirror failed: %v", err)
		}
	case bus.EventSignal:
		sig, ok := ev.Data.(model.Signal)
		if !ok {
			return
		}
		if err := m.PublishSignal(ctx, sig); err != nil && err != ErrCircuitOpen {
			log.Printf("[redis] signal publish failed: %v", err)
		}
	}
}

// MirrorQuote writes the latest quote for a symbol with a TTL so stale
// symbols age out on their own.
func (m *Mirror) MirrorQuote(ctx context.Context, q model.Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	return m.breaker.Execute(func() error {
		if err := m.client.Set(ctx, quoteKeyPrefix+q.Symbol, payload, m.quoteTTL).Err(); err != nil {
			return err
		}
		if m.OnWrite != nil {
			m.OnWrite()
		}
		return nil
	})
}

// PublishSignal publishes a signal on the signals pub/sub channel.
func (m *Mirror) PublishSignal(ctx context.Context, sig model.Signal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return m.breaker.Execute(func() error {
		if err := m.client.Publish(ctx, signalChannel, payload).Err(); err != nil {
			return err
		}
		if m.OnWrite != nil {
			m.OnWrite()
		}
		return nil
	})
}

// Close releases the Redis connection.
func (m *Mirror) Close() error {
	return m.client.Close()
}
