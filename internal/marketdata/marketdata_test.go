package marketdata

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/history"
	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/pkg/upstox"
)

type fakeSource struct {
	quotes map[string]model.Quote
	fails  map[string]error
	calls  []string
}

func (f *fakeSource) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.fails[symbol]; ok {
		return nil, err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return &q, nil
}

func quoteFor(symbol string, price float64) model.Quote {
	return model.Quote{
		Symbol: symbol,
		Price:  price,
		Volume: 100,
		At:     time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

// ────────────────────────────────────────────────────────────
// poller
// ────────────────────────────────────────────────────────────

func TestSweep_OneFailureDoesNotStopTheOthers(t *testing.T) {
	src := &fakeSource{
		quotes: map[string]model.Quote{
			"RELIANCE": quoteFor("RELIANCE", 2950),
			"TCS":      quoteFor("TCS", 4100),
		},
		fails: map[string]error{"INFY": errors.New("upstream 502")},
	}
	hist := history.New(time.Minute)
	cache := NewCache()
	events := bus.NewBus(16)
	sub := events.Subscribe()

	p := NewPoller(src, hist, cache, events, time.Minute, []string{"RELIANCE", "INFY", "TCS"})

	var failed []string
	p.OnFetchError = func(symbol string, err error) { failed = append(failed, symbol) }

	p.sweep(context.Background())

	if len(failed) != 1 || failed[0] != "INFY" {
		t.Fatalf("failed symbols = %v, want [INFY]", failed)
	}
	if len(src.calls) != 3 {
		t.Fatalf("fetch calls = %v, want all three symbols", src.calls)
	}
	for _, sym := range []string{"RELIANCE", "TCS"} {
		if _, ok := cache.Get(sym); !ok {
			t.Errorf("cache missing %s", sym)
		}
		if got := hist.Len(sym); got != 1 {
			t.Errorf("history len(%s) = %d, want 1", sym, got)
		}
	}
	if _, ok := cache.Get("INFY"); ok {
		t.Error("failed symbol landed in cache")
	}

	got := 0
	for len(sub.C) > 0 {
		ev := <-sub.C
		if ev.Type != bus.EventQuote {
			t.Errorf("event type = %s", ev.Type)
		}
		got++
	}
	if got != 2 {
		t.Errorf("quote events = %d, want 2", got)
	}
}

func TestSweep_StopsOnCancelledContext(t *testing.T) {
	src := &fakeSource{quotes: map[string]model.Quote{"RELIANCE": quoteFor("RELIANCE", 2950)}}
	p := NewPoller(src, nil, nil, nil, time.Minute, []string{"RELIANCE", "TCS"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.sweep(ctx)

	if len(src.calls) != 0 {
		t.Fatalf("fetch calls after cancel = %v, want none", src.calls)
	}
}

func TestCache_AllIsSortedBySymbol(t *testing.T) {
	c := NewCache()
	c.Put(quoteFor("TCS", 4100))
	c.Put(quoteFor("INFY", 1600))
	c.Put(quoteFor("RELIANCE", 2950))

	all := c.All()
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Symbol != "INFY" || all[1].Symbol != "RELIANCE" || all[2].Symbol != "TCS" {
		t.Errorf("order = [%s %s %s]", all[0].Symbol, all[1].Symbol, all[2].Symbol)
	}

	// Put replaces, not appends.
	c.Put(quoteFor("TCS", 4150))
	if q, _ := c.Get("TCS"); q.Price != 4150 {
		t.Errorf("TCS price = %v after update", q.Price)
	}
	if len(c.All()) != 3 {
		t.Errorf("len after update = %d", len(c.All()))
	}
}

// ────────────────────────────────────────────────────────────
// synthetic source
// ────────────────────────────────────────────────────────────

func TestSynthetic_WalkInvariants(t *testing.T) {
	s := NewSynthetic(map[string]float64{"RELIANCE": 2950})
	s.rng = rand.New(rand.NewSource(7))

	var prev *model.Quote
	for i := 0; i < 500; i++ {
		q, err := s.FetchQuote(context.Background(), "RELIANCE")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if q.Price <= 0 {
			t.Fatalf("fetch %d: price %v", i, q.Price)
		}
		if q.Open != 2950 {
			t.Fatalf("fetch %d: open drifted to %v", i, q.Open)
		}
		if q.Price > q.High || q.Price < q.Low {
			t.Fatalf("fetch %d: price %v outside [%v, %v]", i, q.Price, q.Low, q.High)
		}
		if prev != nil && q.Volume <= prev.Volume {
			t.Fatalf("fetch %d: volume not increasing (%d -> %d)", i, prev.Volume, q.Volume)
		}
		if diff := q.Change - (q.Price - q.Open); diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("fetch %d: change %v != price-open %v", i, q.Change, q.Price-q.Open)
		}
		prev = q
	}
}

func TestSynthetic_UnknownSymbolUsesDefaultStart(t *testing.T) {
	s := NewSynthetic(nil)
	s.rng = rand.New(rand.NewSource(1))

	q, err := s.FetchQuote(context.Background(), "ANYTHING")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q.Open != defaultStartPrice {
		t.Errorf("open = %v, want %v", q.Open, defaultStartPrice)
	}
}

// ────────────────────────────────────────────────────────────
// upstox source
// ────────────────────────────────────────────────────────────

func TestUpstoxSource_MapsBrokerQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("instrument_key"); got != "NSE_EQ|INE002A01018" {
			t.Errorf("instrument_key = %q", got)
		}
		w.Write([]byte(`{"status":"success","data":{"NSE_EQ:RELIANCE":{
			"symbol":"RELIANCE","instrument_token":"NSE_EQ|INE002A01018",
			"last_price":2950,"volume":125000,"net_change":50,
			"ohlc":{"open":2905,"high":2960,"low":2898,"close":2900}}}}`))
	}))
	defer srv.Close()

	cl := upstox.New(upstox.Config{AccessToken: "tok", BaseURL: srv.URL})
	src := NewUpstoxSource(cl, map[string]string{"RELIANCE": "NSE_EQ|INE002A01018"})

	q, err := src.FetchQuote(context.Background(), "RELIANCE")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Symbol != "RELIANCE" || q.Price != 2950 || q.Volume != 125000 {
		t.Errorf("quote = %+v", q)
	}
	if q.High != 2960 || q.Low != 2898 || q.Open != 2905 {
		t.Errorf("ohlc = %+v", q)
	}
	// prev close 2900, change 50 → +1.724%.
	wantPct := 50.0 / 2900.0 * 100
	if diff := q.ChangePercent - wantPct; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("changePercent = %v, want %v", q.ChangePercent, wantPct)
	}
}

func TestUpstoxSource_UnregisteredSymbol(t *testing.T) {
	cl := upstox.New(upstox.Config{AccessToken: "tok", BaseURL: "http://127.0.0.1:0"})
	src := NewUpstoxSource(cl, nil)

	if _, err := src.FetchQuote(context.Background(), "UNKNOWN"); err == nil {
		t.Fatal("expected error for unregistered symbol")
	}

	src.Register("TCS", "NSE_EQ|INE467B01029")
	// Now the lookup passes and the failure, if any, is the transport's.
	_, err := src.FetchQuote(context.Background(), "TCS")
	if err == nil {
		t.Fatal("expected transport error against closed endpoint")
	}
}

// ────────────────────────────────────────────────────────────
// yahoo source
// ────────────────────────────────────────────────────────────

func TestYahooSymbol_SuffixMapping(t *testing.T) {
	y := NewYahooSource()
	cases := map[string]string{
		"RELIANCE": "RELIANCE.NS",
		"TCS":      "TCS.NS",
		"AAPL.US":  "AAPL.US",
		"INFY.BO":  "INFY.BO",
	}
	for in, want := range cases {
		if got := y.yahooSymbol(in); got != want {
			t.Errorf("yahooSymbol(%q) = %q, want %q", in, got, want)
		}
	}

	bare := &YahooSource{}
	if got := bare.yahooSymbol("RELIANCE"); got != "RELIANCE" {
		t.Errorf("no-suffix mapping = %q", got)
	}
}
