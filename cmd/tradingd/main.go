// tradingd is the trading daemon: it polls market data, evaluates the
// strategy catalog, executes orders (paper or live), and serves the
// dashboard REST and WebSocket APIs.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/InfinixInfotech/Trading-App/config"
	"github.com/InfinixInfotech/Trading-App/internal/api"
	"github.com/InfinixInfotech/Trading-App/internal/auth"
	"github.com/InfinixInfotech/Trading-App/internal/autotrader"
	"github.com/InfinixInfotech/Trading-App/internal/bus"
	"github.com/InfinixInfotech/Trading-App/internal/execution"
	"github.com/InfinixInfotech/Trading-App/internal/gateway"
	"github.com/InfinixInfotech/Trading-App/internal/history"
	"github.com/InfinixInfotech/Trading-App/internal/logger"
	"github.com/InfinixInfotech/Trading-App/internal/marketdata"
	"github.com/InfinixInfotech/Trading-App/internal/markethours"
	"github.com/InfinixInfotech/Trading-App/internal/metrics"
	"github.com/InfinixInfotech/Trading-App/internal/model"
	"github.com/InfinixInfotech/Trading-App/internal/notification"
	"github.com/InfinixInfotech/Trading-App/internal/portfolio"
	"github.com/InfinixInfotech/Trading-App/internal/sched"
	"github.com/InfinixInfotech/Trading-App/internal/status"
	"github.com/InfinixInfotech/Trading-App/internal/store/redis"
	"github.com/InfinixInfotech/Trading-App/internal/strategy"
	"github.com/InfinixInfotech/Trading-App/pkg/upstox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[tradingd] %v", err)
	}
	logger.Init("tradingd", logger.ParseLevel(cfg.LogLevel))

	slog.Info("starting", "broker_mode", cfg.Broker.Mode, "feed", cfg.Feed.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	metricsSrv.Start()

	// Strategy catalog
	strategies, err := config.LoadStrategies(cfg.Trading.StrategiesFile)
	if err != nil {
		log.Fatalf("[tradingd] %v", err)
	}
	registry, err := strategy.NewRegistry(strategies...)
	if err != nil {
		log.Fatalf("[tradingd] %v", err)
	}

	// Shared state
	events := bus.NewBus(256)
	events.OnDrop = func(int, bus.Event) { m.BusDrops.Inc() }

	hist := history.New(cfg.Trading.CandleInterval)
	hist.OnAppend = func(string) { m.HistorySamples.Inc() }
	hist.OnStaleDrop = func(string) { m.StaleCandleDrops.Inc() }

	tracker := status.NewTracker()
	tracker.OnEntry = func(e status.Entry) {
		m.LogEntries.WithLabelValues(string(e.Level)).Inc()
		events.Publish(bus.New(bus.EventLog, e))
	}

	book := portfolio.NewBook()
	risk := portfolio.NewRiskManager(portfolio.RiskLimits{
		MaxPositionQty:   cfg.Risk.MaxPositionQty,
		MaxDailyLoss:     cfg.Risk.MaxDailyLoss,
		MaxOpenPositions: cfg.Risk.MaxOpenPositions,
		MaxDrawdownPct:   cfg.Risk.MaxDrawdownPct,
	}, book, cfg.Trading.InitialEquity)

	// Broker client and session
	client := upstox.New(upstox.Config{
		APIKey:      cfg.Broker.APIKey,
		APISecret:   cfg.Broker.APISecret,
		RedirectURI: cfg.Broker.RedirectURI,
		AccessToken: cfg.Broker.AccessToken,
		BaseURL:     cfg.Broker.BaseURL,
	})
	sessions := auth.NewManager(client, cfg.Broker.TOTPSecret)

	var broker model.Broker
	var gate execution.SessionGate
	if cfg.Broker.Mode == "live" {
		broker = execution.NewLiveBroker(client)
		gate = sessions
		sessions.OnSessionExpired = func() {
			tracker.Errorf("broker session expired, re-login required")
		}
		if cfg.Broker.AccessToken == "" {
			slog.Info("broker login required", "url", sessions.LoginURL())
		}
	} else {
		broker = execution.NewPaperBroker(cfg.Broker.SlippageBps)
	}

	// Execution journal
	var journal *execution.Journal
	if cfg.Trading.JournalPath != "" {
		journal, err = execution.NewJournal(cfg.Trading.JournalPath)
		if err != nil {
			log.Fatalf("[tradingd] journal: %v", err)
		}
		defer journal.Close()
	}

	schd := sched.New(sched.RealClock{})
	defer schd.Stop()

	executor := execution.NewExecutor(execution.Config{
		Broker:   broker,
		Book:     book,
		Registry: registry,
		Sched:    schd,
		Tracker:  tracker,
		Events:   events,
		Gate:     gate,
		Journal:  journal,
		Risk:     risk,
	})

	// Market data
	source := buildSource(cfg, client, strategies)
	cache := marketdata.NewCache()
	if watch := watchOnlySymbols(cfg, strategies); len(watch) > 0 {
		poller := marketdata.NewPoller(source, hist, cache, events, cfg.Feed.PollInterval, watch)
		poller.OnFetchError = func(symbol string, _ error) {
			m.QuoteFetchErrors.WithLabelValues(symbol).Inc()
		}
		go poller.Run(ctx)
	}

	// Trading loop
	trader := autotrader.New(autotrader.Config{
		Registry: registry,
		History:  hist,
		Source:   source,
		Executor: executor,
		Book:     book,
		Tracker:  tracker,
		Events:   events,
		Quotes:   cache,
		Hooks: autotrader.Hooks{
			CycleDone: func(kind string, d time.Duration) {
				m.CyclesTotal.WithLabelValues(kind).Inc()
				m.CycleDuration.Observe(d.Seconds())
			},
			Evaluated: func(t strategy.StrategyType) {
				m.EvaluationsTotal.WithLabelValues(string(t)).Inc()
			},
			Signal: func(action model.SignalAction) {
				m.SignalsTotal.WithLabelValues(string(action)).Inc()
			},
			FetchFailed: func(symbol string) {
				m.QuoteFetchErrors.WithLabelValues(symbol).Inc()
			},
			SymbolBusy: func(string) { m.SymbolBusySkips.Inc() },
		},
		CoarseInterval: cfg.Trading.CoarseInterval,
		HFInterval:     cfg.Trading.HFInterval,
	})
	go trader.Run(ctx)
	if cfg.Trading.AutoStart {
		trader.Enable()
	}

	// WebSocket gateway
	hub := gateway.NewHub(events)
	hub.OnClientCount = func(n int) { m.WSClients.Set(float64(n)) }
	go hub.Run(ctx)

	// Redis mirror
	if cfg.Redis.Enabled {
		mirror, err := redis.NewMirror(redis.MirrorConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("[tradingd] redis: %v", err)
		}
		defer mirror.Close()
		mirror.OnWrite = func() { m.RedisMirrorWrites.Inc() }
		mirror.Breaker().OnStateChange = func(from, to redis.State) {
			slog.Warn("redis breaker state change", "from", from.String(), "to", to.String())
			m.RedisBreakerState.Set(float64(to))
			if to == redis.StateOpen {
				m.RedisBreakerTrips.Inc()
			}
		}
		go mirror.Run(ctx, events)
	}

	// Notifications
	var notifiers []notification.Notifier
	if cfg.Notify.TelegramBotToken != "" && cfg.Notify.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(
			cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	if len(notifiers) == 0 {
		notifiers = append(notifiers, notification.NewLogNotifier())
	}
	var trades *notification.TradePublisher
	if cfg.Kafka.Enabled {
		trades, err = notification.NewTradePublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("[tradingd] kafka: %v", err)
		}
		defer trades.Close()
	}
	dispatcher := notification.NewDispatcher(events, trades, notifiers...)
	go dispatcher.Run(ctx)

	// Order and portfolio gauges
	go watchOrders(ctx, events, m)
	go pollBook(ctx, book, m)
	go resetDailyRisk(ctx, risk)

	// REST API + WebSocket routes
	apiServer := &api.Server{
		Registry: registry,
		Book:     book,
		Risk:     risk,
		History:  hist,
		Quotes:   cache,
		Tracker:  tracker,
		Trader:   trader,
	}
	if cfg.Broker.Mode == "live" {
		apiServer.Sessions = sessions
	}
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	hub.RegisterRoutes(mux)
	srv := &http.Server{Addr: cfg.APIAddr, Handler: mux}
	go func() {
		slog.Info("api listening", "addr", cfg.APIAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[tradingd] api server: %v", err)
		}
	}()

	tracker.Infof("tradingd started: %d strategies, %s mode", len(strategies), cfg.Broker.Mode)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	events.Close()
}

// buildSource picks the quote source named by the config.
func buildSource(cfg *config.AppConfig, client *upstox.Client, strategies []strategy.StrategyConfig) model.QuoteSource {
	switch cfg.Feed.Source {
	case "upstox":
		instruments := make(map[string]string)
		for _, s := range strategies {
			if s.InstrumentToken != "" {
				instruments[s.Symbol] = s.InstrumentToken
			}
		}
		return marketdata.NewUpstoxSource(client, instruments)
	case "yahoo":
		return marketdata.NewYahooSource()
	default:
		return marketdata.NewSynthetic(nil)
	}
}

// watchOnlySymbols returns the configured watchlist minus symbols the
// trading loop already fetches, so each symbol has a single history
// writer.
func watchOnlySymbols(cfg *config.AppConfig, strategies []strategy.StrategyConfig) []string {
	traded := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		traded[s.Symbol] = true
	}
	var out []string
	for _, sym := range cfg.Feed.WatchSymbols {
		if !traded[sym] {
			out = append(out, sym)
		}
	}
	return out
}

// watchOrders counts placed orders off the bus.
func watchOrders(ctx context.Context, events *bus.Bus, m *metrics.Metrics) {
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
			if ev.Type != bus.EventTrade {
				continue
			}
			if order, ok := ev.Data.(model.Order); ok {
				m.OrdersPlaced.WithLabelValues(order.Request.TransactionType).Inc()
			}
		}
	}
}

// resetDailyRisk clears the daily loss counter at each market open.
func resetDailyRisk(ctx context.Context, risk *portfolio.RiskManager) {
	for {
		wait := markethours.TimeUntilOpen(time.Now())
		if wait <= 0 {
			wait = time.Minute
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			risk.ResetDaily()
			slog.Info("daily risk counters reset")
			// Past the open now; the next iteration waits for
			// tomorrow's session.
			time.Sleep(time.Minute)
		}
	}
}

// pollBook refreshes the position and PnL gauges.
func pollBook(ctx context.Context, book *portfolio.Book, m *metrics.Metrics) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sum := book.Summary()
			m.OpenPositions.Set(float64(sum.OpenPositions))
			m.RealizedPnL.Set(sum.RealizedPnL)
		}
	}
}
