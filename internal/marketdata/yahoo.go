package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/quote"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// YahooSource fetches delayed quotes from Yahoo Finance. Used for
// watch-only symbols and as a fallback when no broker session exists.
type YahooSource struct {
	// Suffix is appended to bare symbols, default ".NS" for NSE
	// listings. Symbols already carrying an exchange suffix pass
	// through unchanged.
	Suffix string
}

// NewYahooSource creates a source with the NSE suffix default.
func NewYahooSource() *YahooSource {
	return &YahooSource{Suffix: ".NS"}
}

func (y *YahooSource) yahooSymbol(symbol string) string {
	if strings.Contains(symbol, ".") || y.Suffix == "" {
		return symbol
	}
	return symbol + y.Suffix
}

// FetchQuote implements model.QuoteSource.
func (y *YahooSource) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := quote.Get(y.yahooSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("marketdata: yahoo fetch %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("marketdata: yahoo returned no data for %s", symbol)
	}

	at := time.Now()
	if q.RegularMarketTime > 0 {
		at = time.Unix(int64(q.RegularMarketTime), 0)
	}

	return &model.Quote{
		Symbol:        symbol,
		Price:         q.RegularMarketPrice,
		Open:          q.RegularMarketOpen,
		High:          q.RegularMarketDayHigh,
		Low:           q.RegularMarketDayLow,
		Volume:        int64(q.RegularMarketVolume),
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		At:            at,
	}, nil
}
