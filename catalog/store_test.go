package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-catalog/models"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func i64(v int64) *int64 { return &v }

func TestPutCompany_DerivesSearchKey(t *testing.T) {
	s := NewStore()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	c, err := s.PutCompany(320193, "  Apple Inc. ")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", c.Name)
	assert.Equal(t, "apple", c.SearchKey)
	assert.Equal(t, created, c.CreatedAt)

	renamed := created.Add(time.Hour)
	s.now = func() time.Time { return renamed }
	c, err = s.PutCompany(320193, "Apple Computer, Inc.")
	require.NoError(t, err)
	assert.Equal(t, "applecomputer", c.SearchKey)
	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, renamed, c.UpdatedAt)
}

func TestPutCompany_Invalid(t *testing.T) {
	s := NewStore()

	_, err := s.PutCompany(0, "Nobody")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = s.PutCompany(1, "   ")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestPutTicker_Validation(t *testing.T) {
	s := NewStore()
	_, err := s.PutCompany(1, "Acme Corp")
	require.NoError(t, err)

	valid := models.TickerSummary{Ticker: "ACME", CompanyID: 1, PreviousClose: decimal.RequireFromString("10.5")}

	tests := []struct {
		name   string
		mutate func(*models.TickerSummary)
	}{
		{"blank symbol", func(ts *models.TickerSummary) { ts.Ticker = "  " }},
		{"long symbol", func(ts *models.TickerSummary) { ts.Ticker = "ABCDEFGHIJKLMNOPQRSTU" }},
		{"negative market cap", func(ts *models.TickerSummary) { ts.MarketCap = i64(-1) }},
		{"zero previous close", func(ts *models.TickerSummary) { ts.PreviousClose = decimal.Zero }},
		{"negative pe", func(ts *models.TickerSummary) { ts.PERatio = dec("-0.1") }},
		{"dividend yield over cap", func(ts *models.TickerSummary) { ts.DividendYield = dec("100") }},
		{"negative payout", func(ts *models.TickerSummary) { ts.PayoutRatio = dec("-5") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := valid
			tt.mutate(&ts)
			_, err := s.PutTicker(ts)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
		})
	}

	ts := valid
	ts.CompanyID = 99
	_, err = s.PutTicker(ts)
	assert.ErrorIs(t, err, models.ErrNotFound)

	ts = valid
	ts.DividendYield = dec("99.99")
	got, err := s.PutTicker(ts)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.CompanyName)
}

func TestGetTicker_CaseInsensitive(t *testing.T) {
	s := NewStore()
	_, err := s.PutCompany(1, "Acme Corp")
	require.NoError(t, err)
	_, err = s.PutTicker(models.TickerSummary{Ticker: "ACME", CompanyID: 1, PreviousClose: decimal.NewFromInt(3)})
	require.NoError(t, err)

	got, err := s.GetTicker(" acme ")
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Ticker)

	// Renaming the company shows through on read.
	_, err = s.PutCompany(1, "Acme Holdings")
	require.NoError(t, err)
	got, err = s.GetTicker("ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", got.CompanyName)

	_, err = s.GetTicker("NOPE")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetCompany(t *testing.T) {
	s := NewStore()
	_, err := s.GetCompany(1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.PutCompany(1, "Acme Corp")
	require.NoError(t, err)
	c, err := s.GetCompany(1)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", c.Name)
}

func TestSnapshotsAreOrdered(t *testing.T) {
	s := NewStore()
	for _, id := range []int{30, 10, 20} {
		_, err := s.PutCompany(id, "Company")
		require.NoError(t, err)
	}
	for _, sym := range []string{"ZZ", "AA", "MM"} {
		_, err := s.PutTicker(models.TickerSummary{Ticker: sym, CompanyID: 10, PreviousClose: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}

	var ids []int
	for _, c := range s.Companies() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{10, 20, 30}, ids)

	var syms []string
	for _, tk := range s.Tickers() {
		syms = append(syms, tk.Ticker)
	}
	assert.Equal(t, []string{"AA", "MM", "ZZ"}, syms)
}
