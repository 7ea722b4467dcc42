package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-catalog/models"
)

func listingStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	for id, name := range map[int]string{1: "Apple Inc.", 2: "Microsoft Corporation", 3: "Alphabet Inc."} {
		_, err := s.PutCompany(id, name)
		require.NoError(t, err)
	}
	rows := []models.TickerSummary{
		{Ticker: "AAPL", CompanyID: 1, PreviousClose: decimal.RequireFromString("227.52"), PERatio: dec("34.6"), MarketCap: i64(3400)},
		{Ticker: "MSFT", CompanyID: 2, PreviousClose: decimal.RequireFromString("415.10"), PERatio: dec("36.2"), MarketCap: i64(3100)},
		{Ticker: "GOOGL", CompanyID: 3, PreviousClose: decimal.RequireFromString("165.00"), MarketCap: i64(2000)},
		{Ticker: "GOOG", CompanyID: 3, PreviousClose: decimal.RequireFromString("166.00"), PERatio: dec("23.1")},
	}
	for _, r := range rows {
		_, err := s.PutTicker(r)
		require.NoError(t, err)
	}
	return s
}

func tickersOf(p models.Page[models.TickerSummary]) []string {
	out := make([]string, len(p.Content))
	for i, t := range p.Content {
		out[i] = t.Ticker
	}
	return out
}

func defaultQuery() ListQuery {
	return ListQuery{PageSize: DefaultPageSize, SortBy: SortTicker, SortOrder: Ascending}
}

func TestList_DefaultOrder(t *testing.T) {
	p, err := listingStore(t).List(defaultQuery())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "GOOG", "GOOGL", "MSFT"}, tickersOf(p))
	assert.Equal(t, int64(4), p.TotalElements)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 4, p.NumberOfElements)
}

func TestList_QueryIsCaseInsensitiveContains(t *testing.T) {
	q := defaultQuery()
	q.Query = " goo "
	p, err := listingStore(t).List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOG", "GOOGL"}, tickersOf(p))
}

func TestList_NullsFirstAscLastDesc(t *testing.T) {
	s := listingStore(t)

	q := defaultQuery()
	q.SortBy = SortPE
	p, err := s.List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOGL", "GOOG", "AAPL", "MSFT"}, tickersOf(p))

	q.SortOrder = Descending
	p, err = s.List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "AAPL", "GOOG", "GOOGL"}, tickersOf(p))
}

func TestList_SortByCompanyName(t *testing.T) {
	q := defaultQuery()
	q.SortBy = SortCompanyName
	p, err := listingStore(t).List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOG", "GOOGL", "AAPL", "MSFT"}, tickersOf(p))
}

func TestList_RangeFilters(t *testing.T) {
	s := listingStore(t)

	q := defaultQuery()
	q.PE = Range{Min: dec("30")}
	p, err := s.List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickersOf(p))

	q = defaultQuery()
	q.PreviousClose = Range{Min: dec("165"), Max: dec("227.52")}
	p, err = s.List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOG", "GOOGL"}, tickersOf(p))

	q = defaultQuery()
	q.MinMarketCap = i64(2500)
	p, err = s.List(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickersOf(p))
}

func TestList_Paging(t *testing.T) {
	q := defaultQuery()
	q.PageSize = 5
	q.Page = 1
	p, err := listingStore(t).List(q)
	require.NoError(t, err)

	assert.Empty(t, p.Content)
	assert.Equal(t, 1, p.PageNumber)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, int64(4), p.TotalElements)
}

func TestListQuery_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ListQuery)
	}{
		{"negative page", func(q *ListQuery) { q.Page = -1 }},
		{"odd page size", func(q *ListQuery) { q.PageSize = 7 }},
		{"unknown sort", func(q *ListQuery) { q.SortBy = "volume" }},
		{"bad order", func(q *ListQuery) { q.SortOrder = "UP" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := defaultQuery()
			tt.mutate(&q)
			assert.ErrorIs(t, q.Validate(), models.ErrInvalidArgument)
		})
	}
	assert.NoError(t, defaultQuery().Validate())
}
