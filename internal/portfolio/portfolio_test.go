package portfolio

import (
	"fmt"
	"testing"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

func longPos(id, strategyID, symbol string, entry float64, qty int64) model.Position {
	p := model.Position{
		ID:         id,
		StrategyID: strategyID,
		Symbol:     symbol,
		Side:       model.ActionBuy,
		Qty:        qty,
		EntryPrice: entry,
		OrderID:    id,
		OpenedAt:   time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	p.Mark(entry)
	return p
}

// ────────────────────────────────────────────────────────────
// book
// ────────────────────────────────────────────────────────────

func TestOpen_OnePositionPerStrategy(t *testing.T) {
	b := NewBook()
	if err := b.Open(longPos("ord-1", "ema-crossover-reliance", "RELIANCE", 2950, 1)); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := b.Open(longPos("ord-1", "other", "TCS", 4100, 1)); err == nil {
		t.Error("duplicate position id accepted")
	}
	if err := b.Open(longPos("ord-2", "ema-crossover-reliance", "RELIANCE", 2960, 1)); err == nil {
		t.Error("second position for the same strategy accepted")
	}
	if err := b.Open(model.Position{StrategyID: "x"}); err == nil {
		t.Error("position without id accepted")
	}

	got, ok := b.ForStrategy("ema-crossover-reliance")
	if !ok || got.ID != "ord-1" {
		t.Errorf("ForStrategy = %+v, ok=%v", got, ok)
	}
	if b.Count() != 1 {
		t.Errorf("Count = %d, want 1", b.Count())
	}
}

func TestMark_TouchesOnlyTheSymbol(t *testing.T) {
	b := NewBook()

	long := longPos("ord-1", "s1", "RELIANCE", 100, 2)
	short := longPos("ord-2", "s2", "RELIANCE", 100, 3)
	short.Side = model.ActionSell
	other := longPos("ord-3", "s3", "TCS", 4100, 1)

	for _, p := range []model.Position{long, short, other} {
		if err := b.Open(p); err != nil {
			t.Fatalf("open %s: %v", p.ID, err)
		}
	}

	marked := b.Mark("RELIANCE", 110)
	if len(marked) != 2 {
		t.Fatalf("marked %d positions, want 2", len(marked))
	}
	for _, p := range marked {
		switch p.ID {
		case "ord-1": // long gains 10 × 2
			if p.PnL != 20 || p.PnLPercent != 10 {
				t.Errorf("long pnl = %v (%v%%)", p.PnL, p.PnLPercent)
			}
		case "ord-2": // short loses 10 × 3
			if p.PnL != -30 || p.PnLPercent != -10 {
				t.Errorf("short pnl = %v (%v%%)", p.PnL, p.PnLPercent)
			}
		default:
			t.Errorf("unexpected marked position %s", p.ID)
		}
	}

	untouched, _ := b.Get("ord-3")
	if untouched.CurrentPrice != 4100 {
		t.Errorf("other symbol marked: %v", untouched.CurrentPrice)
	}
}

func TestClose_FoldsRealizedPnL(t *testing.T) {
	b := NewBook()
	if err := b.Open(longPos("ord-1", "s1", "RELIANCE", 100, 2)); err != nil {
		t.Fatal(err)
	}
	if err := b.Open(longPos("ord-2", "s2", "TCS", 200, 1)); err != nil {
		t.Fatal(err)
	}

	b.Mark("RELIANCE", 105) // +10
	b.Mark("TCS", 190)      // -10

	closed, ok := b.Close("ord-1")
	if !ok || closed.PnL != 10 {
		t.Fatalf("Close = %+v, ok=%v", closed, ok)
	}
	if _, ok := b.Get("ord-1"); ok {
		t.Error("closed position still in book")
	}
	if _, ok := b.ForStrategy("s1"); ok {
		t.Error("closed strategy still mapped")
	}

	// The strategy may open again after closing.
	if err := b.Open(longPos("ord-9", "s1", "RELIANCE", 105, 1)); err != nil {
		t.Errorf("reopen after close: %v", err)
	}

	s := b.Summary()
	if s.RealizedPnL != 10 || s.ClosedTrades != 1 {
		t.Errorf("summary realized = %v closed = %d", s.RealizedPnL, s.ClosedTrades)
	}
	if s.OpenPositions != 2 {
		t.Errorf("summary open = %d, want 2", s.OpenPositions)
	}
	if s.UnrealizedPnL != -10 { // TCS -10, new RELIANCE 0
		t.Errorf("summary unrealized = %v, want -10", s.UnrealizedPnL)
	}
	if s.TotalPnL != 0 {
		t.Errorf("summary total = %v, want 0", s.TotalPnL)
	}

	if _, ok := b.Close("ord-1"); ok {
		t.Error("double close succeeded")
	}
}

func TestList_OldestFirst(t *testing.T) {
	b := NewBook()
	first := longPos("ord-1", "s1", "RELIANCE", 100, 1)
	second := longPos("ord-2", "s2", "TCS", 200, 1)
	second.OpenedAt = first.OpenedAt.Add(time.Minute)

	if err := b.Open(second); err != nil {
		t.Fatal(err)
	}
	if err := b.Open(first); err != nil {
		t.Fatal(err)
	}

	list := b.List()
	if len(list) != 2 || list[0].ID != "ord-1" || list[1].ID != "ord-2" {
		t.Fatalf("list order = %v", []string{list[0].ID, list[1].ID})
	}
}

// ────────────────────────────────────────────────────────────
// exit thresholds
// ────────────────────────────────────────────────────────────

func TestShouldExit_StopLossBoundary(t *testing.T) {
	pos := longPos("ord-1", "s1", "RELIANCE", 100, 1)

	pos.Mark(98.5) // exactly -1.5%
	if exit, reason := ShouldExit(pos, 1.5, 3.0); !exit || reason != "stop-loss" {
		t.Errorf("at boundary: exit=%v reason=%q", exit, reason)
	}

	pos.Mark(98.51)
	if exit, _ := ShouldExit(pos, 1.5, 3.0); exit {
		t.Error("exited above the stop-loss boundary")
	}
}

func TestShouldExit_TakeProfitBoundaryAndShorts(t *testing.T) {
	long := longPos("ord-1", "s1", "RELIANCE", 100, 1)
	long.Mark(103) // exactly +3%
	if exit, reason := ShouldExit(long, 1.5, 3.0); !exit || reason != "take-profit" {
		t.Errorf("long TP: exit=%v reason=%q", exit, reason)
	}

	short := longPos("ord-2", "s2", "RELIANCE", 100, 1)
	short.Side = model.ActionSell
	short.Mark(101.5) // -1.5% for a short
	if exit, reason := ShouldExit(short, 1.5, 3.0); !exit || reason != "stop-loss" {
		t.Errorf("short SL: exit=%v reason=%q", exit, reason)
	}
	short.Mark(97) // +3% for a short
	if exit, reason := ShouldExit(short, 1.5, 3.0); !exit || reason != "take-profit" {
		t.Errorf("short TP: exit=%v reason=%q", exit, reason)
	}
}

func TestShouldExit_DisabledThresholds(t *testing.T) {
	pos := longPos("ord-1", "s1", "RELIANCE", 100, 1)
	pos.Mark(50)
	if exit, _ := ShouldExit(pos, 0, 0); exit {
		t.Error("disabled thresholds still exited")
	}
}

// ────────────────────────────────────────────────────────────
// risk limits
// ────────────────────────────────────────────────────────────

func TestCanTrade_OpenPositionCap(t *testing.T) {
	b := NewBook()
	limits := DefaultRiskLimits()
	limits.MaxOpenPositions = 2
	rm := NewRiskManager(limits, b, 100000)

	b.Open(longPos("ord-1", "s1", "RELIANCE", 100, 1))
	b.Open(longPos("ord-2", "s2", "TCS", 200, 1))

	if ok, reason := rm.CanTrade("s3", 1); ok {
		t.Error("entry allowed past the position cap")
	} else if reason != "max open positions reached" {
		t.Errorf("reason = %q", reason)
	}
}

func TestCanTrade_DefaultsOnlyCapOrderSize(t *testing.T) {
	b := NewBook()
	rm := NewRiskManager(DefaultRiskLimits(), b, 100000)

	// Five open positions and a heavy realized loss: with the
	// portfolio-wide limits off by default, only order size vetoes.
	for i := 0; i < 5; i++ {
		b.Open(longPos(fmt.Sprintf("ord-%d", i), fmt.Sprintf("s%d", i), "RELIANCE", 100, 1))
	}
	rm.RecordPnL(-50000)

	if ok, reason := rm.CanTrade("s9", 1); !ok {
		t.Errorf("default limits vetoed a small entry: %s", reason)
	}
	if ok, _ := rm.CanTrade("s9", 101); ok {
		t.Error("oversized qty allowed under default limits")
	}
}

func TestCanTrade_QtyAndLossLimits(t *testing.T) {
	b := NewBook()
	limits := DefaultRiskLimits()
	limits.MaxDailyLoss = 5000
	rm := NewRiskManager(limits, b, 1000000)

	if ok, reason := rm.CanTrade("s1", 101); ok {
		t.Error("oversized qty allowed")
	} else if reason != "position size exceeds limit" {
		t.Errorf("reason = %q", reason)
	}

	rm.RecordPnL(-5001)
	if ok, reason := rm.CanTrade("s1", 1); ok {
		t.Error("entry allowed past the daily loss limit")
	} else if reason != "max daily loss reached" {
		t.Errorf("reason = %q", reason)
	}

	rm.ResetDaily()
	if ok, _ := rm.CanTrade("s1", 1); !ok {
		t.Error("entry blocked after daily reset")
	}
}

func TestCanTrade_DrawdownLimit(t *testing.T) {
	b := NewBook()
	limits := DefaultRiskLimits()
	limits.MaxDrawdownPct = 5.0
	rm := NewRiskManager(limits, b, 100000)

	rm.RecordPnL(-5000) // within daily loss, equity 95000, drawdown 5% not > 5
	if ok, _ := rm.CanTrade("s1", 1); !ok {
		t.Error("entry blocked at exactly the drawdown limit")
	}

	rm.ResetDaily()
	rm.RecordPnL(-1000) // equity 94000, drawdown 6%
	rm.ResetDaily()
	if ok, reason := rm.CanTrade("s1", 1); ok {
		t.Error("entry allowed past the drawdown limit")
	} else if reason != "max drawdown exceeded" {
		t.Errorf("reason = %q", reason)
	}
}
