package indicator

import (
	"fmt"
	"math"
	"testing"
)

// Fixed reference series reused across tests: one rise-fall-rise-fall
// sweep, 15 points.
var refPrices = []float64{10, 11, 12, 11, 10, 9, 10, 11, 12, 13, 14, 13, 12, 11, 10}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.10f, want %.10f (tol=%g, diff=%g)", label, got, want, tol, math.Abs(got-want))
	}
}

// ────────────────────────────────────────────────────────────
// SMA
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Period3(t *testing.T) {
	// Hand-calculated SMA(3) over 10, 11, 12, 11, 10:
	//   (10+11+12)/3 = 11
	//   (11+12+11)/3 = 34/3
	//   (12+11+10)/3 = 11
	got := SMA([]float64{10, 11, 12, 11, 10}, 3)
	want := []float64{11, 34.0 / 3.0, 11}
	if len(got) != len(want) {
		t.Fatalf("series length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		assertClose(t, fmt.Sprintf("SMA(3)[%d]", i), got[i], want[i], 1e-9)
	}
}

func TestSMA_ShortInput(t *testing.T) {
	if got := SMA([]float64{10, 11}, 3); got != nil {
		t.Errorf("SMA on short input: got %v, want nil", got)
	}
	// SMALast falls back to the latest price when the window cannot form.
	assertClose(t, "SMALast short", SMALast([]float64{10, 11}, 3), 11, 1e-9)
	assertClose(t, "SMALast empty", SMALast(nil, 3), 0, 1e-9)
}

func TestSMALast_MatchesSeriesTail(t *testing.T) {
	series := SMA(refPrices, 5)
	assertClose(t, "SMALast vs series", SMALast(refPrices, 5), series[len(series)-1], 1e-9)
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_SeedAndAlignment_Period3(t *testing.T) {
	// Multiplier = 2/(3+1) = 0.5, seeded with the first price:
	//   10
	//   (11-10)*0.5 + 10    = 10.5
	//   (12-10.5)*0.5 + 10.5  = 11.25
	//   (11-11.25)*0.5 + 11.25 = 11.125
	//   (10-11.125)*0.5 + 11.125 = 10.5625
	prices := []float64{10, 11, 12, 11, 10}
	got := EMA(prices, 3)
	want := []float64{10, 10.5, 11.25, 11.125, 10.5625}
	if len(got) != len(prices) {
		t.Fatalf("EMA output must align 1:1 with input: got %d values for %d prices", len(got), len(prices))
	}
	for i := range want {
		assertClose(t, fmt.Sprintf("EMA(3)[%d]", i), got[i], want[i], 1e-9)
	}
}

func TestEMA_NoWarmupTruncation(t *testing.T) {
	// Even with period > len(input) the series stays 1:1 with input.
	got := EMA([]float64{10, 11, 12}, 10)
	if len(got) != 3 {
		t.Fatalf("EMA with long period: got %d values, want 3", len(got))
	}
	assertClose(t, "EMA seed", got[0], 10, 1e-9)
}

// ────────────────────────────────────────────────────────────
// RSI
// ────────────────────────────────────────────────────────────

func TestRSI_BalancedWindow(t *testing.T) {
	// refPrices has 14 deltas: seven +1 and seven -1.
	// avgGain = avgLoss = 0.5, RS = 1, RSI = 100 - 100/2 = 50.
	assertClose(t, "RSI balanced", RSI(refPrices, 14), 50, 1e-9)
}

func TestRSI_Extremes(t *testing.T) {
	down := make([]float64, 15)
	up := make([]float64, 15)
	flat := make([]float64, 15)
	for i := range down {
		down[i] = 100 - float64(i)
		up[i] = 100 + float64(i)
		flat[i] = 100
	}
	// All losses: avgGain 0, RS 0, RSI 0.
	assertClose(t, "RSI descending", RSI(down, 14), 0, 1e-9)
	// Zero average loss saturates at 100, flat window included.
	assertClose(t, "RSI ascending", RSI(up, 14), 100, 1e-9)
	assertClose(t, "RSI flat", RSI(flat, 14), 100, 1e-9)
}

func TestRSI_ShortInput_Neutral(t *testing.T) {
	assertClose(t, "RSI short", RSI([]float64{10, 11, 12}, 14), 50, 1e-9)
	assertClose(t, "RSI empty", RSI(nil, 14), 50, 1e-9)
}

func TestRSI_UsesSeedWindowOnly(t *testing.T) {
	// Values after the first period+1 prices must not affect the result.
	extended := append(append([]float64{}, refPrices...), 500, 1, 999)
	assertClose(t, "RSI seed window", RSI(extended, 14), RSI(refPrices, 14), 1e-9)
}

// ────────────────────────────────────────────────────────────
// Bollinger Bands
// ────────────────────────────────────────────────────────────

func TestBollinger_PopulationStdDev(t *testing.T) {
	// Window 10, 11, 12, 11, 10: mean = 10.8.
	// Squared deviations: 0.64, 0.04, 1.44, 0.04, 0.64 -> sum 2.8.
	// Population variance = 2.8/5 = 0.56.
	sd := math.Sqrt(0.56)
	upper, middle, lower := Bollinger([]float64{10, 11, 12, 11, 10}, 5, 2)
	assertClose(t, "middle", middle, 10.8, 1e-9)
	assertClose(t, "upper", upper, 10.8+2*sd, 1e-9)
	assertClose(t, "lower", lower, 10.8-2*sd, 1e-9)
}

func TestBollinger_ShortInput_CollapsesToPrice(t *testing.T) {
	upper, middle, lower := Bollinger([]float64{10, 12}, 20, 2)
	assertClose(t, "upper", upper, 12, 1e-9)
	assertClose(t, "middle", middle, 12, 1e-9)
	assertClose(t, "lower", lower, 12, 1e-9)
}

// ────────────────────────────────────────────────────────────
// Volatility proxy
// ────────────────────────────────────────────────────────────

func TestVolatility_MeanAbsChange(t *testing.T) {
	// Every close-to-close change in refPrices is exactly 1 rupee.
	assertClose(t, "volatility ref", Volatility(refPrices, 14), 1, 1e-9)

	// 100 -> 104 -> 98: |+4| + |-6| over 2 deltas = 5.
	assertClose(t, "volatility mixed", Volatility([]float64{100, 104, 98}, 2), 5, 1e-9)
}

func TestVolatility_ShortInput(t *testing.T) {
	assertClose(t, "volatility single", Volatility([]float64{100}, 14), 0, 1e-9)
	// Fewer deltas than the period: average over what exists.
	assertClose(t, "volatility partial", Volatility([]float64{100, 103}, 14), 3, 1e-9)
}

// ────────────────────────────────────────────────────────────
// Stochastic %K
// ────────────────────────────────────────────────────────────

func TestStochastic_WindowPosition(t *testing.T) {
	// Trailing 14 of refPrices: low 9, high 14, current 10.
	// %K = (10-9)/(14-9)*100 = 20.
	assertClose(t, "%K ref", StochasticK(refPrices, 14), 20, 1e-9)
	// %D has no extra smoothing.
	assertClose(t, "%D equals %K", StochasticD(refPrices, 14), StochasticK(refPrices, 14), 1e-9)
}

func TestStochastic_FlatWindow_Neutral(t *testing.T) {
	assertClose(t, "%K flat", StochasticK([]float64{5, 5, 5, 5}, 3), 50, 1e-9)
	assertClose(t, "%K empty", StochasticK(nil, 14), 50, 1e-9)
}

// ────────────────────────────────────────────────────────────
// MACD delta + volume ratio
// ────────────────────────────────────────────────────────────

func TestMACD_SignTracksTrend(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if MACD(up, 3, 6) <= 0 {
		t.Errorf("MACD on ascending series: got %v, want > 0", MACD(up, 3, 6))
	}
	down := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	if MACD(down, 3, 6) >= 0 {
		t.Errorf("MACD on descending series: got %v, want < 0", MACD(down, 3, 6))
	}
	assertClose(t, "MACD identity", MACD(up, 3, 6), EMALast(up, 3)-EMALast(up, 6), 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	// Latest 200 vs mean(100,100,100,100) = 2.0.
	assertClose(t, "ratio heavy", VolumeRatio([]int64{100, 100, 100, 100, 200}, 4), 2, 1e-9)
	assertClose(t, "ratio short", VolumeRatio([]int64{100, 200}, 4), 1, 1e-9)
	assertClose(t, "ratio zero mean", VolumeRatio([]int64{0, 0, 0, 0, 200}, 4), 1, 1e-9)
}
