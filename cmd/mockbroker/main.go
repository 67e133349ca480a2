// mockbroker emulates the brokerage REST API for local development.
// Point tradingd at it with UPSTOX_BASE_URL to exercise the live order
// path without a real account: tokens are handed out freely, orders
// are accepted and remembered, and quotes come from a random walk.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/InfinixInfotech/Trading-App/internal/logger"
	"github.com/InfinixInfotech/Trading-App/internal/marketdata"
)

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	flag.Parse()

	logger.Init("mockbroker", logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	h := NewHandler(marketdata.NewSynthetic(map[string]float64{
		"RELIANCE": 2950,
		"TCS":      3500,
		"INFY":     1550,
		"HDFCBANK": 1650,
		"SBIN":     820,
	}), slog.Default())

	slog.Info("mockbroker listening", "addr", *addr)
	if err := h.StartServer(*addr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
