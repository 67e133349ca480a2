// Package execution turns gated strategy signals into broker orders
// and manages the order lifecycle around them: position registration,
// delayed stop-loss/take-profit child orders, exits, performance
// accounting, and the SQLite trade journal.
package execution

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/internal/portfolio"
	"github.com/InfinixInfotech/Trading-App/internal/sched"
	"github.com/InfinixInfotech/Trading-App/internal/status"
	"github.com/InfinixInfotech/Trading-App/internal/strategy"
)

// ChildOrderDelay is how long after the parent acknowledgement the
// stop-loss and take-profit orders go out. Children are never scheduled
// before the parent is acknowledged.
const ChildOrderDelay = 5 * time.Second

// SessionGate blocks order placement while the broker session is
// expired. A nil gate allows everything (paper trading).
type SessionGate interface {
	RequireSession() error
}

// Executor places orders for signals that cleared their confidence
// gate. One Execute call is one entry attempt; failures are logged and
// returned, never retried within the cycle.
type Executor struct {
	broker   model.Broker
	book     *portfolio.Book
	registry *strategy.Registry
	sched    *sched.Scheduler
	tracker  *status.Tracker
	events   *bus.Bus
	gate     SessionGate
	journal  *Journal // optional, audit only
	risk     *portfolio.RiskManager
}

// Config carries the Executor's collaborators. Broker, Book, Registry
// and Sched are required; the rest may be nil.
type Config struct {
	Broker   model.Broker
	Book     *portfolio.Book
	Registry *strategy.Registry
	Sched    *sched.Scheduler
	Tracker  *status.Tracker
	Events   *bus.Bus
	Gate     SessionGate
	Journal  *Journal
	Risk     *portfolio.RiskManager
}

// NewExecutor wires an Executor.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		broker:   cfg.Broker,
		book:     cfg.Book,
		registry: cfg.Registry,
		sched:    cfg.Sched,
		tracker:  cfg.Tracker,
		events:   cfg.Events,
		gate:     cfg.Gate,
		journal:  cfg.Journal,
		risk:     cfg.Risk,
	}
}

// Execute places the entry order for an actionable signal and, on
// acknowledgement, registers the position and schedules its stop-loss
// and take-profit children. The returned position carries the parent
// order id.
func (e *Executor) Execute(ctx context.Context, cfg strategy.StrategyConfig, sig model.Signal) (*model.Position, error) {
	if !sig.Actionable() {
		return nil, fmt.Errorf("execution: signal for %s is not actionable", cfg.ID)
	}
	if e.gate != nil {
		if err := e.gate.RequireSession(); err != nil {
			e.logErrorf("order blocked for %s: %v", cfg.Name, err)
			return nil, err
		}
	}
	if e.risk != nil {
		if ok, reason := e.risk.CanTrade(cfg.ID, int(cfg.Params.Quantity)); !ok {
			e.logWarnf("order blocked for %s: %s", cfg.Name, reason)
			return nil, fmt.Errorf("execution: risk check: %s", reason)
		}
	}

	req := entryRequest(cfg, sig)
	ack, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		e.logErrorf("order placement failed for %s: %v", cfg.Name, err)
		return nil, fmt.Errorf("execution: place entry order: %w", err)
	}

	pos := model.Position{
		ID:              ack.OrderID,
		StrategyID:      cfg.ID,
		Symbol:          cfg.Symbol,
		InstrumentToken: cfg.InstrumentToken,
		Side:            sig.Action,
		Qty:             req.Quantity,
		EntryPrice:      sig.Price,
		CurrentPrice:    sig.Price,
		OrderID:         ack.OrderID,
		OpenedAt:        sig.At,
	}
	if err := e.book.Open(pos); err != nil {
		// The order is live but untracked; surface loudly.
		e.logErrorf("order %s placed but not tracked: %v", ack.OrderID, err)
		return nil, fmt.Errorf("execution: register position: %w", err)
	}

	e.registry.RecordTrade(cfg.ID)
	e.logSuccessf("%s %s x%d %s @ %.2f (order %s, confidence %.0f)",
		sig.Action, cfg.Symbol, req.Quantity, cfg.Name, sig.Price, ack.OrderID, sig.Confidence)
	e.publish(bus.EventTrade, model.Order{
		OrderID:  ack.OrderID,
		Request:  req,
		Status:   model.OrderStatusPlaced,
		PlacedAt: sig.At,
	})
	e.publish(bus.EventPosition, pos)
	if e.journal != nil {
		if err := e.journal.RecordEntry(pos, sig); err != nil {
			log.Printf("[executor] journal write failed: %v", err)
		}
	}

	// Children go out on a delay after the parent ack, grouped under
	// the parent order id so an early exit cancels them together.
	params := cfg.Params
	e.sched.Schedule(ack.OrderID, ChildOrderDelay, func() {
		e.placeChildOrders(pos, params)
	})
	return &pos, nil
}

// placeChildOrders submits the stop-loss and take-profit orders derived
// from the entry. Each child failure degrades to a log entry; the other
// child still goes out.
func (e *Executor) placeChildOrders(pos model.Position, params strategy.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slReq, tpReq := childRequests(pos, params)
	var slID, tpID string

	if slAck, err := e.broker.PlaceOrder(ctx, slReq); err != nil {
		e.logErrorf("stop-loss order failed for %s (parent %s): %v", pos.Symbol, pos.OrderID, err)
	} else {
		slID = slAck.OrderID
	}
	if tpAck, err := e.broker.PlaceOrder(ctx, tpReq); err != nil {
		e.logErrorf("take-profit order failed for %s (parent %s): %v", pos.Symbol, pos.OrderID, err)
	} else {
		tpID = tpAck.OrderID
	}

	if slID == "" && tpID == "" {
		return
	}
	e.book.SetChildOrders(pos.ID, slID, tpID)
	e.logInfof("protective orders for %s: SL %.2f (%s) / TP %.2f (%s)",
		pos.Symbol, slReq.TriggerPrice, orFailed(slID), tpReq.Price, orFailed(tpID))
}

// ClosePosition exits an open position with an offsetting order,
// cancels any still-pending child orders, and folds the realized PnL
// into the strategy performance.
func (e *Executor) ClosePosition(ctx context.Context, pos model.Position, reason string) error {
	// Children scheduled but not yet submitted must not fire after
	// the exit.
	e.sched.Cancel(pos.OrderID)

	req := model.OrderRequest{
		TradingSymbol:   pos.Symbol,
		InstrumentToken: pos.InstrumentToken,
		Quantity:        pos.Qty,
		OrderType:       model.OrderTypeMarket,
		TransactionType: pos.ExitSide(),
		Product:         model.ProductIntraday,
		Validity:        model.ValidityDay,
		Tag:             "exit-" + pos.OrderID,
		RefPrice:        pos.CurrentPrice,
	}
	ack, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		e.logErrorf("exit order failed for %s (%s): %v", pos.Symbol, reason, err)
		return fmt.Errorf("execution: place exit order: %w", err)
	}

	// Submitted children that survive at the broker get cancelled
	// best-effort; a working SL/TP on a flat position is a hazard.
	for _, childID := range []string{pos.SLOrderID, pos.TPOrderID} {
		if childID == "" {
			continue
		}
		if err := e.broker.CancelOrder(ctx, childID); err != nil {
			e.logWarnf("could not cancel child order %s: %v", childID, err)
		}
	}

	closed, ok := e.book.Close(pos.ID)
	if !ok {
		closed = pos
	}
	e.registry.RecordClose(closed.StrategyID, closed.PnL)
	if e.risk != nil {
		e.risk.RecordPnL(closed.PnL)
	}
	e.logSuccessf("closed %s %s x%d at %.2f (%s, PnL %+.2f, order %s)",
		closed.Side, closed.Symbol, closed.Qty, closed.CurrentPrice, reason, closed.PnL, ack.OrderID)
	e.publish(bus.EventTrade, model.Order{
		OrderID:  ack.OrderID,
		Request:  req,
		Status:   model.OrderStatusPlaced,
		PlacedAt: time.Now(),
	})
	e.publish(bus.EventPosition, closed)
	if e.journal != nil {
		if err := e.journal.RecordExit(closed, reason, ack.OrderID); err != nil {
			log.Printf("[executor] journal write failed: %v", err)
		}
	}
	return nil
}

// entryRequest builds the parent order from the strategy parameters.
// Market orders carry price 0 on the wire with the signal price as the
// paper-fill reference; limit orders peg the signal price.
func entryRequest(cfg strategy.StrategyConfig, sig model.Signal) model.OrderRequest {
	params := cfg.Params
	orderType := params.OrderType
	if orderType == "" {
		orderType = model.OrderTypeMarket
	}
	product := params.Product
	if product == "" {
		product = model.ProductIntraday
	}
	qty := params.Quantity
	if qty <= 0 {
		qty = 1
	}
	price := 0.0
	if orderType == model.OrderTypeLimit {
		price = model.RoundPrice(sig.Price)
	}
	return model.OrderRequest{
		TradingSymbol:   cfg.Symbol,
		InstrumentToken: cfg.InstrumentToken,
		Quantity:        qty,
		Price:           price,
		OrderType:       orderType,
		TransactionType: string(sig.Action),
		Product:         product,
		Validity:        model.ValidityDay,
		Tag:             cfg.ID,
		RefPrice:        sig.Price,
	}
}

// childRequests derives the stop-loss (SL-M trigger, adverse side) and
// take-profit (limit, favorable side) orders from the entry fill. Both
// prices snap to the exchange tick.
func childRequests(pos model.Position, params strategy.Params) (sl, tp model.OrderRequest) {
	slPct := params.StopLoss / 100
	tpPct := params.TakeProfit / 100

	var slPrice, tpPrice float64
	if pos.Side == model.ActionBuy {
		slPrice = pos.EntryPrice * (1 - slPct)
		tpPrice = pos.EntryPrice * (1 + tpPct)
	} else {
		slPrice = pos.EntryPrice * (1 + slPct)
		tpPrice = pos.EntryPrice * (1 - tpPct)
	}

	base := model.OrderRequest{
		TradingSymbol:   pos.Symbol,
		InstrumentToken: pos.InstrumentToken,
		Quantity:        pos.Qty,
		TransactionType: pos.ExitSide(),
		Product:         model.ProductIntraday,
		Validity:        model.ValidityDay,
		Tag:             pos.OrderID,
	}

	sl = base
	sl.OrderType = model.OrderTypeSLM
	sl.TriggerPrice = model.RoundPrice(slPrice)

	tp = base
	tp.OrderType = model.OrderTypeLimit
	tp.Price = model.RoundPrice(tpPrice)
	return sl, tp
}

func (e *Executor) publish(typ bus.EventType, data any) {
	if e.events != nil {
		e.events.Publish(bus.New(typ, data))
	}
}

func (e *Executor) logInfof(format string, args ...any) {
	if e.tracker != nil {
		e.tracker.Infof(format, args...)
	}
}

func (e *Executor) logSuccessf(format string, args ...any) {
	if e.tracker != nil {
		e.tracker.Successf(format, args...)
	}
}

func (e *Executor) logWarnf(format string, args ...any) {
	if e.tracker != nil {
		e.tracker.Warnf(format, args...)
	}
}

func (e *Executor) logErrorf(format string, args ...any) {
	if e.tracker != nil {
		e.tracker.Errorf(format, args...)
	}
}

func orFailed(id string) string {
	if id == "" {
		return "failed"
	}
	return id
}
