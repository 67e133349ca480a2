// Package autotrader runs the timer-driven evaluation loop: each cycle
// fetches every traded symbol once, updates rolling history, evaluates
// all enabled strategies on the symbol into signals, and pushes gated
// signals into order execution. Open positions are re-marked each
// cycle and closed when they breach their stop-loss or take-profit
// thresholds; the exit check covers every open position, including
// those whose strategy has since been disabled.
//
// The loop is a two-speed machine: a coarse cycle covers every enabled
// strategy on a fixed period, and a high-frequency cycle does the same
// on a shorter period but only while the market is open. Disabling
// auto-trading stops future cycles from starting; an in-flight cycle
// finishes, since abandoning a broker call mid-placement risks
// inconsistent state.
package autotrader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/history"
	"github.com/InfinixInfotech/Trading-App/internal/markethours"
	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/internal/portfolio"
	"github.com/InfinixInfotech/Trading-App/internal/status"
	"github.com/InfinixInfotech/Trading-App/internal/strategy"
)

// Default cycle periods and the per-call budget for external fetches.
const (
	DefaultCoarseInterval = 60 * time.Second
	DefaultHFInterval     = 30 * time.Second
	DefaultCallTimeout    = 30 * time.Second
)

// OrderExecutor is the execution seam the loop drives. Implemented by
// execution.Executor; tests substitute a recorder.
type OrderExecutor interface {
	Execute(ctx context.Context, cfg strategy.StrategyConfig, sig model.Signal) (*model.Position, error)
	ClosePosition(ctx context.Context, pos model.Position, reason string) error
}

// QuoteSink receives every quote the loop fetches, so the dashboard
// cache stays current for traded symbols too. Implemented by
// marketdata.Cache.
type QuoteSink interface {
	Put(q model.Quote)
}

// Hooks are optional metric taps. Every field may be nil.
type Hooks struct {
	CycleDone   func(kind string, d time.Duration)
	Evaluated   func(strategyType strategy.StrategyType)
	Signal      func(action model.SignalAction)
	FetchFailed func(symbol string)
	SymbolBusy  func(symbol string)
}

// Trader owns the evaluation loop.
type Trader struct {
	registry *strategy.Registry
	history  *history.Store
	source   model.QuoteSource
	executor OrderExecutor
	book     *portfolio.Book
	tracker  *status.Tracker
	events   *bus.Bus
	quotes   QuoteSink
	hooks    Hooks

	coarseEvery time.Duration
	hfEvery     time.Duration
	callTimeout time.Duration

	// marketOpen gates the high-frequency cycle; tests can pin it.
	marketOpen func(time.Time) bool

	// At most one in-flight sweep per symbol at a time; a sweep
	// covers every strategy on the symbol.
	busyMu sync.Mutex
	busy   map[string]bool
}

// Config carries the Trader's collaborators and tunables. Registry,
// History, Source, Executor, Book, and Tracker are required.
type Config struct {
	Registry *strategy.Registry
	History  *history.Store
	Source   model.QuoteSource
	Executor OrderExecutor
	Book     *portfolio.Book
	Tracker  *status.Tracker
	Events   *bus.Bus
	Quotes   QuoteSink
	Hooks    Hooks

	CoarseInterval time.Duration
	HFInterval     time.Duration
	CallTimeout    time.Duration
}

// New builds a Trader. Zero intervals fall back to the defaults.
func New(cfg Config) *Trader {
	if cfg.CoarseInterval <= 0 {
		cfg.CoarseInterval = DefaultCoarseInterval
	}
	if cfg.HFInterval <= 0 {
		cfg.HFInterval = DefaultHFInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Trader{
		registry:    cfg.Registry,
		history:     cfg.History,
		source:      cfg.Source,
		executor:    cfg.Executor,
		book:        cfg.Book,
		tracker:     cfg.Tracker,
		events:      cfg.Events,
		quotes:      cfg.Quotes,
		hooks:       cfg.Hooks,
		coarseEvery: cfg.CoarseInterval,
		hfEvery:     cfg.HFInterval,
		callTimeout: cfg.CallTimeout,
		marketOpen:  markethours.IsMarketOpen,
		busy:        make(map[string]bool),
	}
}

// Enable turns auto-trading on. The next timer tick starts evaluating.
func (t *Trader) Enable() {
	t.tracker.SetAutoTrading(true)
	t.tracker.Successf("auto-trading enabled")
	t.publishStatus()
}

// Disable turns auto-trading off. In-flight cycles complete; no new
// cycle starts.
func (t *Trader) Disable() {
	t.tracker.SetAutoTrading(false)
	t.tracker.Infof("auto-trading disabled")
	t.publishStatus()
}

// Run drives the two cycle timers until ctx is cancelled.
func (t *Trader) Run(ctx context.Context) {
	slog.Info("autotrader loop started",
		"coarse_interval", t.coarseEvery.String(),
		"hf_interval", t.hfEvery.String())

	coarse := time.NewTicker(t.coarseEvery)
	hf := time.NewTicker(t.hfEvery)
	defer coarse.Stop()
	defer hf.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("autotrader loop stopped")
			return
		case <-coarse.C:
			if t.tracker.AutoTrading() {
				t.RunCycle(ctx, "coarse")
			}
		case <-hf.C:
			// The tighter loop only runs during the trading
			// session.
			if t.tracker.AutoTrading() && t.marketOpen(time.Now()) {
				t.RunCycle(ctx, "hf")
			}
		}
	}
}

// RunCycle sweeps every traded symbol once. Each symbol is fetched a
// single time and every enabled strategy on it evaluates against that
// quote. Symbols are processed concurrently so one slow fetch does not
// stall the others; per-symbol busy flags keep sweeps for the same
// symbol from interleaving when cycles overlap. Symbols whose only
// claim is an open position (every strategy on them disabled) are
// still swept so their exit thresholds keep being checked.
func (t *Trader) RunCycle(ctx context.Context, kind string) {
	start := time.Now()
	bySymbol := make(map[string][]strategy.StrategyConfig)
	var order []string
	for _, cfg := range t.registry.Enabled() {
		if _, seen := bySymbol[cfg.Symbol]; !seen {
			order = append(order, cfg.Symbol)
		}
		bySymbol[cfg.Symbol] = append(bySymbol[cfg.Symbol], cfg)
	}
	for _, pos := range t.book.List() {
		if _, seen := bySymbol[pos.Symbol]; !seen {
			order = append(order, pos.Symbol)
			bySymbol[pos.Symbol] = nil
		}
	}
	if len(order) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, symbol := range order {
		if ctx.Err() != nil {
			break
		}
		if !t.acquire(symbol) {
			slog.Debug("symbol busy, skipping this cycle", "symbol", symbol)
			if t.hooks.SymbolBusy != nil {
				t.hooks.SymbolBusy(symbol)
			}
			continue
		}
		wg.Add(1)
		go func(symbol string, cfgs []strategy.StrategyConfig) {
			defer wg.Done()
			defer t.release(symbol)
			t.sweepSymbol(ctx, symbol, cfgs)
		}(symbol, bySymbol[symbol])
	}
	wg.Wait()

	if t.hooks.CycleDone != nil {
		t.hooks.CycleDone(kind, time.Since(start))
	}
}

// sweepSymbol fetches the symbol once, updates history and the
// dashboard feeds, runs the exit check on its open positions, and
// then evaluates each strategy against the fresh quote. cfgs is empty
// for a symbol held only by a disabled strategy's position.
func (t *Trader) sweepSymbol(ctx context.Context, symbol string, cfgs []strategy.StrategyConfig) {
	fetchCtx, cancel := context.WithTimeout(ctx, t.callTimeout)
	quote, err := t.source.FetchQuote(fetchCtx, symbol)
	cancel()
	if err != nil {
		t.tracker.Warnf("quote fetch failed for %s: %v", symbol, err)
		if t.hooks.FetchFailed != nil {
			t.hooks.FetchFailed(symbol)
		}
		return
	}

	t.history.Append(symbol, quote.Sample())
	if t.quotes != nil {
		t.quotes.Put(*quote)
	}
	if t.events != nil {
		// Value payload, matching the poller's publishes.
		t.events.Publish(bus.New(bus.EventQuote, *quote))
	}
	t.checkExits(ctx, symbol, quote.Price)

	for _, cfg := range cfgs {
		if ctx.Err() != nil {
			return
		}
		t.evaluate(ctx, cfg, quote)
	}
}

// evaluate runs one strategy against the sweep's quote: evaluate,
// gate, execute. Every failure degrades to a log entry and a skipped
// action.
func (t *Trader) evaluate(ctx context.Context, cfg strategy.StrategyConfig, quote *model.Quote) {
	prices, volumes := t.history.Series(cfg.Symbol)
	view := strategy.MarketView{
		Prices:  prices,
		Volumes: volumes,
		Price:   quote.Price,
		At:      quote.At,
	}
	sig := strategy.EvaluatorFor(cfg.Type).Evaluate(cfg, view)
	t.registry.RecordSignal(sig)
	if t.hooks.Evaluated != nil {
		t.hooks.Evaluated(cfg.Type)
	}
	if !sig.Actionable() {
		return
	}

	if t.hooks.Signal != nil {
		t.hooks.Signal(sig.Action)
	}
	if t.events != nil {
		t.events.Publish(bus.New(bus.EventSignal, sig))
	}
	t.tracker.Infof("%s signal for %s: %s (confidence %.0f)", cfg.Name, cfg.Symbol, sig.Action, sig.Confidence)

	if sig.Confidence < strategy.GateFor(cfg.Type) {
		return
	}
	if _, holding := t.book.ForStrategy(cfg.ID); holding {
		slog.Debug("strategy already holds a position, skipping entry", "strategy", cfg.ID)
		return
	}

	execCtx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()
	// Failures are logged inside the executor; the next cycle
	// re-evaluates from scratch.
	if _, err := t.executor.Execute(execCtx, cfg, sig); err != nil {
		slog.Warn("order execution failed", "strategy", cfg.ID, "error", err)
	}
}

// checkExits re-marks every open position for the symbol and closes
// the ones that breached their strategy's stop-loss or take-profit.
func (t *Trader) checkExits(ctx context.Context, symbol string, price float64) {
	for _, pos := range t.book.Mark(symbol, price) {
		owner, err := t.registry.Get(pos.StrategyID)
		if err != nil {
			// Position from a since-removed strategy; leave it
			// to manual handling.
			continue
		}
		exit, reason := portfolio.ShouldExit(pos, owner.Params.StopLoss, owner.Params.TakeProfit)
		if !exit {
			continue
		}
		t.tracker.Warnf("%s hit for %s: PnL %.2f%% (entry %.2f, now %.2f)",
			reason, pos.Symbol, pos.PnLPercent, pos.EntryPrice, pos.CurrentPrice)

		closeCtx, cancel := context.WithTimeout(ctx, t.callTimeout)
		if err := t.executor.ClosePosition(closeCtx, pos, reason); err != nil {
			slog.Warn("position close failed", "position", pos.ID, "error", err)
		}
		cancel()
	}
}

func (t *Trader) acquire(symbol string) bool {
	t.busyMu.Lock()
	defer t.busyMu.Unlock()
	if t.busy[symbol] {
		return false
	}
	t.busy[symbol] = true
	return true
}

func (t *Trader) release(symbol string) {
	t.busyMu.Lock()
	delete(t.busy, symbol)
	t.busyMu.Unlock()
}

func (t *Trader) publishStatus() {
	if t.events != nil {
		t.events.Publish(bus.New(bus.EventStatus, t.tracker.Snapshot()))
	}
}
