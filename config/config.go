// Package config loads daemon configuration from the environment (an
// optional .env file is read first) and the strategy catalog from a
// YAML file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Broker holds brokerage credentials and execution mode.
type Broker struct {
	// "paper" fills orders locally, "live" routes to the broker API.
	Mode        string  `envconfig:"BROKER_MODE" default:"paper"`
	APIKey      string  `envconfig:"UPSTOX_API_KEY"`
	APISecret   string  `envconfig:"UPSTOX_API_SECRET"`
	RedirectURI string  `envconfig:"UPSTOX_REDIRECT_URI"`
	AccessToken string  `envconfig:"UPSTOX_ACCESS_TOKEN"`
	TOTPSecret  string  `envconfig:"UPSTOX_TOTP_SECRET"`
	BaseURL     string  `envconfig:"UPSTOX_BASE_URL"` // override for the mock broker
	SlippageBps float64 `envconfig:"PAPER_SLIPPAGE_BPS" default:"5"`
}

// Feed selects and tunes the market data source.
type Feed struct {
	// "upstox", "yahoo" or "synthetic".
	Source       string        `envconfig:"FEED_SOURCE" default:"synthetic"`
	PollInterval time.Duration `envconfig:"FEED_POLL_INTERVAL" default:"30s"`
	// Symbols polled for the dashboard beyond those strategies trade.
	WatchSymbols []string `envconfig:"WATCH_SYMBOLS"`
}

// Trading tunes the evaluation loop.
type Trading struct {
	CoarseInterval time.Duration `envconfig:"COARSE_INTERVAL" default:"60s"`
	HFInterval     time.Duration `envconfig:"HF_INTERVAL" default:"30s"`
	AutoStart      bool          `envconfig:"AUTOTRADE_ON_START" default:"false"`
	InitialEquity  float64       `envconfig:"INITIAL_EQUITY" default:"100000"`
	JournalPath    string        `envconfig:"JOURNAL_PATH" default:"trades.db"`
	StrategiesFile string        `envconfig:"STRATEGIES_FILE"`
	CandleInterval time.Duration `envconfig:"CANDLE_INTERVAL" default:"1m"`
}

// Risk holds the order-entry risk checks. Zero disables a limit; only
// the per-order quantity cap is active by default, the portfolio-wide
// limits are opt-in.
type Risk struct {
	MaxPositionQty   int     `envconfig:"RISK_MAX_POSITION_QTY" default:"100"`
	MaxDailyLoss     float64 `envconfig:"RISK_MAX_DAILY_LOSS" default:"0"`
	MaxOpenPositions int     `envconfig:"RISK_MAX_OPEN_POSITIONS" default:"0"`
	MaxDrawdownPct   float64 `envconfig:"RISK_MAX_DRAWDOWN_PCT" default:"0"`
}

// Redis configures the optional live-state mirror.
type Redis struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Kafka configures the optional trade event stream.
type Kafka struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"trading.orders"`
}

// Notify configures alert channels. Empty values disable a channel.
type Notify struct {
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`
	WebhookURL       string `envconfig:"ALERT_WEBHOOK_URL"`
}

// AppConfig is the full daemon configuration.
type AppConfig struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	APIAddr     string `envconfig:"API_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9100"`

	Broker  Broker
	Feed    Feed
	Trading Trading
	Risk    Risk
	Redis   Redis
	Kafka   Kafka
	Notify  Notify
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; its absence is not
// an error.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Broker.Mode {
	case "paper", "live":
	default:
		return fmt.Errorf("config: BROKER_MODE must be paper or live, got %q", c.Broker.Mode)
	}
	switch c.Feed.Source {
	case "upstox", "yahoo", "synthetic":
	default:
		return fmt.Errorf("config: FEED_SOURCE must be upstox, yahoo or synthetic, got %q", c.Feed.Source)
	}
	if c.Broker.Mode == "live" && c.Broker.AccessToken == "" && c.Broker.APIKey == "" {
		return fmt.Errorf("config: live mode requires UPSTOX_API_KEY or UPSTOX_ACCESS_TOKEN")
	}
	return nil
}
