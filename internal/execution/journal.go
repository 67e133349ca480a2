package execution

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// Journal persists entries and exits to SQLite for audit and offline
// analysis. It is write-only at runtime: the process never reads its
// own state back from it, so a restart still resets all live state.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) the journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id     TEXT NOT NULL,
		event        TEXT NOT NULL,   -- ENTRY | EXIT
		strategy_id  TEXT NOT NULL,
		symbol       TEXT NOT NULL,
		side         TEXT NOT NULL,
		qty          INTEGER NOT NULL,
		price        REAL NOT NULL,
		pnl          REAL DEFAULT 0,
		confidence   REAL DEFAULT 0,
		reason       TEXT,
		executed_at  DATETIME NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy_id);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_executed_at ON trades(executed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened trade journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// RecordEntry journals a position open.
func (j *Journal) RecordEntry(pos model.Position, sig model.Signal) error {
	reason := ""
	if len(sig.Conditions) > 0 {
		reason = sig.Conditions[0]
	}
	return j.insert(pos.OrderID, "ENTRY", pos.StrategyID, pos.Symbol,
		string(pos.Side), pos.Qty, pos.EntryPrice, 0, sig.Confidence, reason, pos.OpenedAt)
}

// RecordExit journals a position close with its realized PnL.
func (j *Journal) RecordExit(pos model.Position, reason, exitOrderID string) error {
	return j.insert(exitOrderID, "EXIT", pos.StrategyID, pos.Symbol,
		pos.ExitSide(), pos.Qty, pos.CurrentPrice, pos.PnL, 0, reason, time.Now())
}

func (j *Journal) insert(orderID, event, strategyID, symbol, side string, qty int64, price, pnl, confidence float64, reason string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(
		`INSERT INTO trades (order_id, event, strategy_id, symbol, side, qty, price, pnl, confidence, reason, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		orderID, event, strategyID, symbol, side, qty, price, pnl, confidence, reason,
		at.UTC().Format(time.RFC3339),
	)
	return err
}

// TradeRecord is one journaled row.
type TradeRecord struct {
	ID         int64   `json:"id"`
	OrderID    string  `json:"orderId"`
	Event      string  `json:"event"`
	StrategyID string  `json:"strategyId"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Qty        int64   `json:"qty"`
	Price      float64 `json:"price"`
	PnL        float64 `json:"pnl"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	ExecutedAt string  `json:"executedAt"`
}

// Trades returns the last limit rows, newest first.
func (j *Journal) Trades(limit int) ([]TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, order_id, event, strategy_id, symbol, side, qty, price, pnl, confidence, reason, executed_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Event, &t.StrategyID, &t.Symbol,
			&t.Side, &t.Qty, &t.Price, &t.PnL, &t.Confidence, &t.Reason, &t.ExecutedAt); err != nil {
			continue
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
