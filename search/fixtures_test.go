package search

import "stock-catalog/models"

// staticSource is a fixed RecordSource with search keys computed the way the
// catalog computes them.
type staticSource struct {
	companies []models.Company
	tickers   []models.TickerSummary
}

func newStaticSource() *staticSource {
	return &staticSource{}
}

func (s *staticSource) company(id int, name string, symbols ...string) *staticSource {
	s.companies = append(s.companies, models.Company{ID: id, Name: name, SearchKey: NormalizeCompanyName(name)})
	for _, sym := range symbols {
		s.tickers = append(s.tickers, models.TickerSummary{Ticker: sym, CompanyID: id, CompanyName: name})
	}
	return s
}

func (s *staticSource) Companies() []models.Company { return s.companies }
func (s *staticSource) Tickers() []models.TickerSummary { return s.tickers }

func sampleCatalog() *staticSource {
	return newStaticSource().
		company(320193, "Apple Inc.", "AAPL").
		company(1158449, "Advance Auto Parts Inc", "AAP").
		company(789019, "Microsoft Corporation", "MSFT").
		company(1652044, "Alphabet Inc.", "GOOGL", "GOOG").
		company(1067983, "Berkshire Hathaway Inc", "BRK.A", "BRK.B").
		company(1000001, "Applied Widgets Holdings")
}
