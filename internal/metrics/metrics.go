// Package metrics exposes Prometheus instrumentation for the trading
// daemon and the HTTP server that serves /metrics and /healthz.
package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading daemon.
type Metrics struct {
	// Evaluation loop
	CyclesTotal      *prometheus.CounterVec // labels: kind=coarse|hf
	CycleDuration    prometheus.Histogram
	EvaluationsTotal *prometheus.CounterVec // labels: strategy_type
	SignalsTotal     *prometheus.CounterVec // labels: action
	SymbolBusySkips  prometheus.Counter

	// Market data
	QuoteFetchErrors *prometheus.CounterVec // labels: symbol
	HistorySamples   prometheus.Counter
	StaleCandleDrops prometheus.Counter

	// Execution
	OrdersPlaced  *prometheus.CounterVec // labels: side
	OpenPositions prometheus.Gauge
	RealizedPnL   prometheus.Gauge

	// Gateway / bus
	WSClients prometheus.Gauge
	BusDrops  prometheus.Counter

	// Mirror
	RedisBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisBreakerTrips prometheus.Counter
	RedisMirrorWrites prometheus.Counter

	// Status log
	LogEntries *prometheus.CounterVec // labels: level
}

// New registers and returns the daemon metric set.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradingd_cycles_total",
			Help: "Evaluation cycles run, by cycle kind",
		}, []string{"kind"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradingd_cycle_duration_seconds",
			Help:    "Wall time of one full evaluation cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradingd_evaluations_total",
			Help: "Strategy evaluations, by strategy type",
		}, []string{"strategy_type"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradingd_signals_total",
			Help: "Actionable signals emitted, by action",
		}, []string{"action"}),
		SymbolBusySkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradingd_symbol_busy_skips_total",
			Help: "Evaluations skipped because the symbol was still being evaluated",
		}),

		QuoteFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradingd_quote_fetch_errors_total",
			Help: "Failed quote fetches, by symbol",
		}, []string{"symbol"}),
		HistorySamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradingd_history_samples_total",
			Help: "Price samples appended to history",
		}),
		StaleCandleDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradingd_stale_candle_drops_total",
			Help: "Samples dropped from the candle path for belonging to an older bucket",
		}),

		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradingd_orders_placed_total",
			Help: "Orders acknowledged by the broker, by side",
		}, []string{"side"}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradingd_open_positions",
			Help: "Currently open positions",
		}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradingd_realized_pnl_rupees",
			Help: "Realized PnL since process start",
		}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradingd_ws_clients",
			Help: "Connected dashboard WebSocket clients",
		}),
		BusDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradingd_bus_drops_total",
			Help: "Events dropped by the fan-out bus for slow subscribers",
		}),

		RedisBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradingd_redis_breaker_state",
			Help: "Redis mirror circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradingd_redis_breaker_trips_total",
			Help: "Times the Redis mirror circuit breaker tripped open",
		}),
		RedisMirrorWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradingd_redis_mirror_writes_total",
			Help: "Successful writes to the Redis live-state mirror",
		}),

		LogEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradingd_log_entries_total",
			Help: "Activity log entries, by severity",
		}, []string{"level"}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.EvaluationsTotal,
		m.SignalsTotal,
		m.SymbolBusySkips,
		m.QuoteFetchErrors,
		m.HistorySamples,
		m.StaleCandleDrops,
		m.OrdersPlaced,
		m.OpenPositions,
		m.RealizedPnL,
		m.WSClients,
		m.BusDrops,
		m.RedisBreakerState,
		m.RedisBreakerTrips,
		m.RedisMirrorWrites,
		m.LogEntries,
	)

	return m
}

// Server runs an HTTP server exposing /metrics and a liveness probe.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates the metrics server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","ts":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
