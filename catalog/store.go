package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stock-catalog/models"
	"stock-catalog/search"
)

// MaxTickerLength bounds a ticker symbol.
const MaxTickerLength = 20

var (
	maxPercentage = decimal.RequireFromString("99.99")
	zero          = decimal.Zero
)

// Index is a search index kept in step with every accepted write. It is
// updated before the store commits, so a failed update leaves both as they
// were.
type Index interface {
	UpsertCompany(c models.Company, tickers []models.TickerSummary) error
	Upsert(t models.TickerSummary, c models.Company) error
	Delete(symbol string, c models.Company, remaining int) error
}

// Store is the in-process record store for companies and their tickers.
// Companies are keyed by CIK, tickers by upper-cased symbol.
type Store struct {
	mu        sync.RWMutex
	companies map[int]models.Company
	tickers   map[string]models.TickerSummary
	index     Index
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		companies: make(map[int]models.Company),
		tickers:   make(map[string]models.TickerSummary),
		now:       time.Now,
	}
}

// WithIndex routes every later write through ix as well.
func (s *Store) WithIndex(ix Index) *Store {
	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()
	return s
}

// PutCompany creates or renames a company. The search key is recomputed
// from name on every call.
func (s *Store) PutCompany(id int, name string) (models.Company, error) {
	if id <= 0 {
		return models.Company{}, fmt.Errorf("cik must be positive, got %d: %w", id, models.ErrInvalidArgument)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Company{}, fmt.Errorf("company name is required: %w", models.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.companies[id]
	if !ok {
		c = models.Company{ID: id, CreatedAt: now}
	}
	c.Name = name
	c.SearchKey = search.NormalizeCompanyName(name)
	c.UpdatedAt = now

	if s.index != nil {
		if err := s.index.UpsertCompany(c, s.tickersOfLocked(c, "")); err != nil {
			return models.Company{}, fmt.Errorf("index company %d: %w", id, err)
		}
	}
	s.companies[id] = c

	return c, nil
}

// PutTicker creates or replaces a ticker summary after validating it.
func (s *Store) PutTicker(t models.TickerSummary) (models.TickerSummary, error) {
	t.Ticker = strings.TrimSpace(t.Ticker)
	if err := validateTicker(t); err != nil {
		return models.TickerSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.companies[t.CompanyID]
	if !ok {
		return models.TickerSummary{}, fmt.Errorf("company %d for ticker %s: %w", t.CompanyID, t.Ticker, models.ErrNotFound)
	}
	t.CompanyName = c.Name
	key := strings.ToUpper(t.Ticker)

	if s.index != nil {
		if err := s.index.Upsert(t, c); err != nil {
			return models.TickerSummary{}, fmt.Errorf("index ticker %s: %w", t.Ticker, err)
		}
		// A ticker moved away from the last listing of its old company
		// leaves that company symbol-less.
		if prev, ok := s.tickers[key]; ok && prev.CompanyID != t.CompanyID {
			if old, ok := s.companies[prev.CompanyID]; ok && len(s.tickersOfLocked(old, key)) == 0 {
				if err := s.index.UpsertCompany(old, nil); err != nil {
					return models.TickerSummary{}, fmt.Errorf("index company %d: %w", old.ID, err)
				}
			}
		}
	}
	s.tickers[key] = t

	return t, nil
}

// DeleteTicker removes a ticker. Its company stays in the catalog.
func (s *Store) DeleteTicker(symbol string) error {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickers[key]
	if !ok {
		return fmt.Errorf("ticker %s: %w", symbol, models.ErrNotFound)
	}
	if s.index != nil {
		c := s.companies[t.CompanyID]
		if err := s.index.Delete(t.Ticker, c, len(s.tickersOfLocked(c, key))); err != nil {
			return fmt.Errorf("unindex ticker %s: %w", t.Ticker, err)
		}
	}
	delete(s.tickers, key)
	return nil
}

// tickersOfLocked lists the tickers of c other than except, ordered by
// symbol and carrying c's name. The caller holds s.mu.
func (s *Store) tickersOfLocked(c models.Company, except string) []models.TickerSummary {
	var out []models.TickerSummary
	for key, t := range s.tickers {
		if t.CompanyID != c.ID || key == except {
			continue
		}
		t.CompanyName = c.Name
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

func validateTicker(t models.TickerSummary) error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf(format+": %w", append(args, models.ErrInvalidArgument)...)
	}

	if t.Ticker == "" {
		return invalid("ticker symbol is required")
	}
	if len(t.Ticker) > MaxTickerLength {
		return invalid("ticker symbol %q exceeds %d characters", t.Ticker, MaxTickerLength)
	}
	if t.MarketCap != nil && *t.MarketCap < 0 {
		return invalid("market cap must be non-negative")
	}
	if !t.PreviousClose.GreaterThan(zero) {
		return invalid("previous close must be positive")
	}
	for name, v := range map[string]*decimal.Decimal{
		"pe ratio":                t.PERatio,
		"forward pe ratio":        t.ForwardPERatio,
		"fifty day average":       t.FiftyDayAverage,
		"two hundred day average": t.TwoHundredDayAverage,
	} {
		if v != nil && v.IsNegative() {
			return invalid("%s must be non-negative", name)
		}
	}
	for name, v := range map[string]*decimal.Decimal{
		"dividend yield": t.DividendYield,
		"payout ratio":   t.PayoutRatio,
	} {
		if v != nil && (v.IsNegative() || v.GreaterThan(maxPercentage)) {
			return invalid("%s must be between 0 and %s", name, maxPercentage)
		}
	}
	return nil
}

// GetCompany returns the company with the given CIK.
func (s *Store) GetCompany(id int) (models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return models.Company{}, fmt.Errorf("company %d: %w", id, models.ErrNotFound)
	}
	return c, nil
}

// GetTicker looks a ticker up case-insensitively.
func (s *Store) GetTicker(symbol string) (models.TickerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickers[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return models.TickerSummary{}, fmt.Errorf("ticker %s: %w", symbol, models.ErrNotFound)
	}
	if c, ok := s.companies[t.CompanyID]; ok {
		t.CompanyName = c.Name
	}
	return t, nil
}

// Companies returns a snapshot of all companies ordered by CIK.
func (s *Store) Companies() []models.Company {
	s.mu.RLock()
	out := make([]models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tickers returns a snapshot of all tickers ordered by symbol, with the
// current company name filled in.
func (s *Store) Tickers() []models.TickerSummary {
	s.mu.RLock()
	out := make([]models.TickerSummary, 0, len(s.tickers))
	for _, t := range s.tickers {
		if c, ok := s.companies[t.CompanyID]; ok {
			t.CompanyName = c.Name
		}
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
