package loader

import (
	"context"
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stock-catalog/models"
)

// TickerStore is the part of the catalog the refresher reads and writes.
type TickerStore interface {
	GetTicker(symbol string) (models.TickerSummary, error)
	PutTicker(t models.TickerSummary) (models.TickerSummary, error)
}

// QuoteRefresher pulls the latest market metrics for catalog tickers from
// Yahoo Finance.
type QuoteRefresher struct {
	fetch    func(symbol string) (*finance.Equity, error)
	logger   *zap.Logger
	observer func(status string)
}

func NewQuoteRefresher(logger *zap.Logger) *QuoteRefresher {
	return &QuoteRefresher{fetch: equity.Get, logger: logger}
}

// WithObserver registers a callback invoked once per symbol with
// "updated", "skipped" or "error".
func (q *QuoteRefresher) WithObserver(fn func(status string)) *QuoteRefresher {
	q.observer = fn
	return q
}

// Refresh updates the given symbols in place. A symbol that cannot be
// fetched or stored is logged and skipped. It returns the number of tickers
// updated, or the context error when cancelled.
func (q *QuoteRefresher) Refresh(ctx context.Context, store TickerStore, symbols []string) (int, error) {
	updated := 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		status, err := q.refreshOne(store, symbol)
		if err != nil {
			q.logger.Warn("quote refresh failed", zap.String("ticker", symbol), zap.Error(err))
		}
		if q.observer != nil {
			q.observer(status)
		}
		if status == "updated" {
			updated++
		}
	}
	return updated, nil
}

func (q *QuoteRefresher) refreshOne(store TickerStore, symbol string) (string, error) {
	current, err := store.GetTicker(symbol)
	if err != nil {
		return "error", err
	}

	eq, err := q.fetch(current.Ticker)
	if err != nil {
		return "error", fmt.Errorf("fetch quote: %w", err)
	}
	if eq == nil {
		return "skipped", nil
	}

	next := applyEquity(current, eq)
	if _, err := store.PutTicker(next); err != nil {
		return "error", fmt.Errorf("store quote: %w", err)
	}
	return "updated", nil
}

// applyEquity overlays the non-zero vendor fields on a summary. Yahoo
// reports dividend yield as a fraction; the catalog keeps percent.
func applyEquity(t models.TickerSummary, eq *finance.Equity) models.TickerSummary {
	if eq.RegularMarketPreviousClose > 0 {
		t.PreviousClose = decimal.NewFromFloat(eq.RegularMarketPreviousClose).Round(4)
	}
	if eq.MarketCap > 0 {
		mc := eq.MarketCap
		t.MarketCap = &mc
	}
	if v := positive(eq.TrailingPE); v != nil {
		t.PERatio = v
	}
	if v := positive(eq.ForwardPE); v != nil {
		t.ForwardPERatio = v
	}
	if v := positive(eq.TrailingAnnualDividendYield * 100); v != nil {
		t.DividendYield = v
	}
	if v := positive(eq.FiftyDayAverage); v != nil {
		t.FiftyDayAverage = v
	}
	if v := positive(eq.TwoHundredDayAverage); v != nil {
		t.TwoHundredDayAverage = v
	}
	return t
}

func positive(f float64) *decimal.Decimal {
	if f <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(f).Round(4)
	return &d
}
