package history

import (
	"sync"
	"testing"
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

var base = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func sample(price float64, at time.Time) model.PriceSample {
	return model.PriceSample{Price: price, Volume: 100, At: at}
}

// ────────────────────────────────────────────────────────────
// Raw buffer eviction
// ────────────────────────────────────────────────────────────

func TestRawEviction_CapAndOrder(t *testing.T) {
	s := New(time.Minute)
	for i := 0; i < 250; i++ {
		s.Append("RELIANCE", sample(float64(i), base.Add(time.Duration(i)*time.Second)))
	}

	prices := s.Prices("RELIANCE")
	if len(prices) != RawCap {
		t.Fatalf("raw buffer length: got %d, want %d", len(prices), RawCap)
	}
	// Oldest 50 evicted: buffer holds 50..249 in arrival order.
	if prices[0] != 50 {
		t.Errorf("oldest surviving price: got %v, want 50", prices[0])
	}
	if prices[len(prices)-1] != 249 {
		t.Errorf("newest price: got %v, want 249", prices[len(prices)-1])
	}
	for i := 1; i < len(prices); i++ {
		if prices[i] != prices[i-1]+1 {
			t.Fatalf("arrival order broken at index %d: %v after %v", i, prices[i], prices[i-1])
		}
	}
}

// ────────────────────────────────────────────────────────────
// Candle building
// ────────────────────────────────────────────────────────────

func TestCandle_SameBucketFolds(t *testing.T) {
	s := New(time.Minute)
	s.Append("TCS", sample(100, base))
	s.Append("TCS", sample(104, base.Add(10*time.Second)))
	s.Append("TCS", sample(98, base.Add(20*time.Second)))

	candles := s.Candles("TCS")
	if len(candles) != 1 {
		t.Fatalf("candle count: got %d, want 1", len(candles))
	}
	c := candles[0]
	if c.Open != 100 || c.High != 104 || c.Low != 98 || c.Close != 98 {
		t.Errorf("OHLC: got %+v, want open=100 high=104 low=98 close=98", c)
	}
	if c.Volume != 300 {
		t.Errorf("volume: got %d, want 300", c.Volume)
	}
	if c.High < c.Open || c.High < c.Close || c.Low > c.Open || c.Low > c.Close {
		t.Errorf("OHLC invariant violated: %+v", c)
	}
}

func TestCandle_NewBucketAppendsAndEvicts(t *testing.T) {
	s := New(time.Minute)
	for i := 0; i < CandleCap+10; i++ {
		s.Append("INFY", sample(100+float64(i), base.Add(time.Duration(i)*time.Minute)))
	}

	candles := s.Candles("INFY")
	if len(candles) != CandleCap {
		t.Fatalf("candle count: got %d, want %d", len(candles), CandleCap)
	}
	if want := base.Add(10 * time.Minute); !candles[0].Start.Equal(want) {
		t.Errorf("oldest candle start: got %v, want %v", candles[0].Start, want)
	}
	for i := 1; i < len(candles); i++ {
		if candles[i].Start.Before(candles[i-1].Start) {
			t.Fatalf("periodStart not monotonic at %d: %v before %v", i, candles[i].Start, candles[i-1].Start)
		}
	}
}

func TestCandle_StaleBucketDropped(t *testing.T) {
	s := New(time.Minute)
	var staleDrops int
	s.OnStaleDrop = func(string) { staleDrops++ }

	s.Append("SBIN", sample(100, base))
	s.Append("SBIN", sample(101, base.Add(time.Minute)))
	// Belongs to the first, already-closed minute bucket.
	s.Append("SBIN", sample(150, base.Add(30*time.Second)))

	candles := s.Candles("SBIN")
	if len(candles) != 2 {
		t.Fatalf("candle count: got %d, want 2", len(candles))
	}
	if candles[1].High == 150 || candles[0].High == 150 {
		t.Errorf("stale sample leaked into candles: %+v", candles)
	}
	if staleDrops != 1 {
		t.Errorf("stale drop hook fired %d times, want 1", staleDrops)
	}
	// The raw buffer still records arrival order.
	if got := s.Len("SBIN"); got != 3 {
		t.Errorf("raw length: got %d, want 3", got)
	}
}

// ────────────────────────────────────────────────────────────
// Snapshots and per-symbol independence
// ────────────────────────────────────────────────────────────

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(time.Minute)
	s.Append("HDFC", sample(100, base))

	prices := s.Prices("HDFC")
	prices[0] = -1
	if got := s.Prices("HDFC")[0]; got != 100 {
		t.Errorf("snapshot mutation leaked into store: got %v, want 100", got)
	}
}

func TestConcurrentAppends_DoNotInterfere(t *testing.T) {
	s := New(time.Minute)
	symbols := []string{"A", "B", "C", "D"}
	const perSymbol = 300

	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			for i := 0; i < perSymbol; i++ {
				s.Append(sym, sample(float64(i), base.Add(time.Duration(i)*time.Second)))
			}
		}(sym)
	}
	wg.Wait()

	for _, sym := range symbols {
		if got := s.Len(sym); got != RawCap {
			t.Errorf("%s: raw length got %d, want %d", sym, got, RawCap)
		}
	}
	if got := len(s.Symbols()); got != len(symbols) {
		t.Errorf("symbol count: got %d, want %d", got, len(symbols))
	}
}

func TestSeries_AlignedPricesAndVolumes(t *testing.T) {
	s := New(time.Minute)
	for i := 0; i < 5; i++ {
		s.Append("ITC", model.PriceSample{Price: float64(10 + i), Volume: int64(i), At: base.Add(time.Duration(i) * time.Second)})
	}
	prices, volumes := s.Series("ITC")
	if len(prices) != len(volumes) {
		t.Fatalf("series misaligned: %d prices vs %d volumes", len(prices), len(volumes))
	}
	for i := range prices {
		if int64(prices[i])-10 != volumes[i] {
			t.Errorf("index %d: price %v does not pair with volume %d", i, prices[i], volumes[i])
		}
	}
}
