package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stock-catalog/catalog"
	"stock-catalog/models"
)

// Column counts of the two catalog files.
const (
	companyColumns = 2  // cik,company_name
	tickerColumns  = 10 // ticker,cik,market_cap,previous_close,pe_ratio,forward_pe_ratio,dividend_yield,payout_ratio,fifty_day_average,two_hundred_day_average
)

// LoadCompanies reads a cik,company_name CSV. Rows that fail to parse are
// skipped with a warning.
func LoadCompanies(filePath string, logger *zap.Logger) ([]models.Company, error) {
	records, err := readCSV(filePath)
	if err != nil {
		return nil, err
	}

	var companies []models.Company
	for i, record := range records {
		if i == 0 && isHeader(record, "cik") {
			continue
		}
		c, err := parseCompany(record)
		if err != nil {
			logger.Warn("skipping company row", zap.String("file", filePath), zap.Int("line", i+1), zap.Error(err))
			continue
		}
		companies = append(companies, c)
	}
	return companies, nil
}

// LoadTickers reads the ticker summary CSV. Blank metric cells are null.
// Rows that fail to parse are skipped with a warning.
func LoadTickers(filePath string, logger *zap.Logger) ([]models.TickerSummary, error) {
	records, err := readCSV(filePath)
	if err != nil {
		return nil, err
	}

	var tickers []models.TickerSummary
	for i, record := range records {
		if i == 0 && isHeader(record, "ticker") {
			continue
		}
		t, err := parseTicker(record)
		if err != nil {
			logger.Warn("skipping ticker row", zap.String("file", filePath), zap.Int("line", i+1), zap.Error(err))
			continue
		}
		tickers = append(tickers, t)
	}
	return tickers, nil
}

// Stats counts what Populate stored and rejected.
type Stats struct {
	Companies         int
	Tickers           int
	RejectedCompanies int
	RejectedTickers   int
}

// Populate writes the loaded rows into the store. Companies go first so
// tickers can reference them; rows the store rejects are logged and skipped.
func Populate(store *catalog.Store, companies []models.Company, tickers []models.TickerSummary, logger *zap.Logger) Stats {
	var st Stats
	for _, c := range companies {
		if _, err := store.PutCompany(c.ID, c.Name); err != nil {
			logger.Warn("rejected company", zap.Int("cik", c.ID), zap.Error(err))
			st.RejectedCompanies++
			continue
		}
		st.Companies++
	}
	for _, t := range tickers {
		if _, err := store.PutTicker(t); err != nil {
			logger.Warn("rejected ticker", zap.String("ticker", t.Ticker), zap.Error(err))
			st.RejectedTickers++
			continue
		}
		st.Tickers++
	}
	return st
}

func readCSV(filePath string) ([][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readRecords(f)
}

func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func isHeader(record []string, first string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), first)
}

func parseCompany(record []string) (models.Company, error) {
	if len(record) < companyColumns {
		return models.Company{}, fmt.Errorf("expected %d columns, got %d", companyColumns, len(record))
	}
	id, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return models.Company{}, fmt.Errorf("cik: %w", err)
	}
	return models.Company{ID: id, Name: strings.TrimSpace(record[1])}, nil
}

func parseTicker(record []string) (models.TickerSummary, error) {
	if len(record) < tickerColumns {
		return models.TickerSummary{}, fmt.Errorf("expected %d columns, got %d", tickerColumns, len(record))
	}

	t := models.TickerSummary{Ticker: strings.TrimSpace(record[0])}

	var err error
	if t.CompanyID, err = strconv.Atoi(strings.TrimSpace(record[1])); err != nil {
		return t, fmt.Errorf("cik: %w", err)
	}
	if t.MarketCap, err = optionalInt(record[2]); err != nil {
		return t, fmt.Errorf("market_cap: %w", err)
	}

	prev, err := optionalDecimal(record[3])
	if err != nil {
		return t, fmt.Errorf("previous_close: %w", err)
	}
	if prev == nil {
		return t, fmt.Errorf("previous_close is required")
	}
	t.PreviousClose = *prev

	optional := []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"pe_ratio", &t.PERatio},
		{"forward_pe_ratio", &t.ForwardPERatio},
		{"dividend_yield", &t.DividendYield},
		{"payout_ratio", &t.PayoutRatio},
		{"fifty_day_average", &t.FiftyDayAverage},
		{"two_hundred_day_average", &t.TwoHundredDayAverage},
	}
	for i, col := range optional {
		if *col.dst, err = optionalDecimal(record[4+i]); err != nil {
			return t, fmt.Errorf("%s: %w", col.name, err)
		}
	}
	return t, nil
}

func optionalDecimal(cell string) (*decimal.Decimal, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// optionalInt accepts whole numbers written with a fractional part, as
// vendor exports often do for market cap.
func optionalInt(cell string) (*int64, error) {
	d, err := optionalDecimal(cell)
	if err != nil || d == nil {
		return nil, err
	}
	v := d.IntPart()
	return &v, nil
}
