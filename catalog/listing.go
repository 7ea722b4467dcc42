package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stock-catalog/models"
)

// Sort fields accepted by List.
const (
	SortTicker        = "ticker"
	SortCompanyName   = "company_name"
	SortPreviousClose = "previous_close"
	SortPE            = "pe"
	SortForwardPE     = "forward_pe"
	SortDividendYield = "dividend_yield"
	SortMarketCap     = "market_cap"
	SortPayoutRatio   = "payout_ratio"
)

// Sort directions accepted by List.
const (
	Ascending  = "ASC"
	Descending = "DESC"
)

// PageSizes are the only page sizes List serves.
var PageSizes = []int{5, 10, 25, 50}

// DefaultPageSize is used when a caller does not ask for one.
const DefaultPageSize = 25

// Range is an inclusive bound pair; nil ends are open.
type Range struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

func (r Range) contains(v *decimal.Decimal) bool {
	if r.Min == nil && r.Max == nil {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// ListQuery filters, sorts and pages ticker summaries.
type ListQuery struct {
	Query         string // ticker contains, case-insensitive
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
	PreviousClose Range
	PE            Range
	ForwardPE     Range
	DividendYield Range
	PayoutRatio   Range
	MinMarketCap  *int64
	MaxMarketCap  *int64
}

// Validate checks paging and sort parameters.
func (q ListQuery) Validate() error {
	if q.Page < 0 {
		return fmt.Errorf("page must be >= 0, got %d: %w", q.Page, models.ErrInvalidArgument)
	}
	if !validPageSize(q.PageSize) {
		return fmt.Errorf("page size must be one of %v, got %d: %w", PageSizes, q.PageSize, models.ErrInvalidArgument)
	}
	if _, ok := sortKeys[q.SortBy]; !ok {
		return fmt.Errorf("unsupported sort field %q: %w", q.SortBy, models.ErrInvalidArgument)
	}
	if q.SortOrder != Ascending && q.SortOrder != Descending {
		return fmt.Errorf("sort order must be ASC or DESC, got %q: %w", q.SortOrder, models.ErrInvalidArgument)
	}
	return nil
}

func validPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// sortKey extracts the comparable value of a field; nil means null.
type sortKey func(t models.TickerSummary) *decimal.Decimal

var sortKeys = map[string]sortKey{
	SortTicker:        nil,
	SortCompanyName:   nil,
	SortPreviousClose: func(t models.TickerSummary) *decimal.Decimal { return &t.PreviousClose },
	SortPE:            func(t models.TickerSummary) *decimal.Decimal { return t.PERatio },
	SortForwardPE:     func(t models.TickerSummary) *decimal.Decimal { return t.ForwardPERatio },
	SortDividendYield: func(t models.TickerSummary) *decimal.Decimal { return t.DividendYield },
	SortPayoutRatio:   func(t models.TickerSummary) *decimal.Decimal { return t.PayoutRatio },
	SortMarketCap: func(t models.TickerSummary) *decimal.Decimal {
		if t.MarketCap == nil {
			return nil
		}
		d := decimal.NewFromInt(*t.MarketCap)
		return &d
	},
}

// List returns one page of ticker summaries. Nulls sort first ascending and
// last descending; ties fall back to ticker order.
func (s *Store) List(q ListQuery) (models.Page[models.TickerSummary], error) {
	if err := q.Validate(); err != nil {
		return models.Page[models.TickerSummary]{}, err
	}

	needle := strings.ToUpper(strings.TrimSpace(q.Query))
	var matched []models.TickerSummary
	for _, t := range s.Tickers() {
		if needle != "" && !strings.Contains(strings.ToUpper(t.Ticker), needle) {
			continue
		}
		if !q.matches(t) {
			continue
		}
		matched = append(matched, t)
	}

	asc := q.SortOrder == Ascending
	less := comparator(q.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		c := less(matched[i], matched[j])
		if c == 0 {
			return matched[i].Ticker < matched[j].Ticker
		}
		if asc {
			return c < 0
		}
		return c > 0
	})

	return models.NewPage(matched, q.Page, q.PageSize), nil
}

func (q ListQuery) matches(t models.TickerSummary) bool {
	if !q.PreviousClose.contains(&t.PreviousClose) ||
		!q.PE.contains(t.PERatio) ||
		!q.ForwardPE.contains(t.ForwardPERatio) ||
		!q.DividendYield.contains(t.DividendYield) ||
		!q.PayoutRatio.contains(t.PayoutRatio) {
		return false
	}
	if q.MinMarketCap != nil || q.MaxMarketCap != nil {
		if t.MarketCap == nil {
			return false
		}
		if q.MinMarketCap != nil && *t.MarketCap < *q.MinMarketCap {
			return false
		}
		if q.MaxMarketCap != nil && *t.MarketCap > *q.MaxMarketCap {
			return false
		}
	}
	return true
}

// comparator orders two summaries by field, treating null as the smallest
// value so that it lands first ascending and last descending.
func comparator(field string) func(a, b models.TickerSummary) int {
	switch field {
	case SortTicker:
		return func(a, b models.TickerSummary) int { return strings.Compare(a.Ticker, b.Ticker) }
	case SortCompanyName:
		return func(a, b models.TickerSummary) int {
			return strings.Compare(strings.ToLower(a.CompanyName), strings.ToLower(b.CompanyName))
		}
	}

	key := sortKeys[field]
	return func(a, b models.TickerSummary) int {
		va, vb := key(a), key(b)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return -1
		case vb == nil:
			return 1
		}
		return va.Cmp(*vb)
	}
}
