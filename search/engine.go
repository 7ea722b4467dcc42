package search

import (
	"context"
	"sort"
	"strings"

	"stock-catalog/models"
)

// DefaultStreamLimit caps each similarity stream.
const DefaultStreamLimit = 50

// Matcher is what a data store must provide for autocomplete: two
// independent candidate streams for a lowercase pattern, each scored with
// FieldScore, stripped of rows under MatchThreshold and ordered by
// descending score.
type Matcher interface {
	// MatchTickers scores the ticker symbol field.
	MatchTickers(ctx context.Context, pattern string) ([]models.MatchCandidate, error)
	// MatchCompanies scores the company search key, one row per listed symbol.
	MatchCompanies(ctx context.Context, pattern string) ([]models.MatchCandidate, error)
}

// RecordSource exposes the catalog rows that matchers read.
type RecordSource interface {
	Companies() []models.Company
	Tickers() []models.TickerSummary
}

// MemoryMatcher scores every record of a RecordSource on each call.
// Scores are exact; it suits tests and small catalogs.
type MemoryMatcher struct {
	source RecordSource
	limit  int
}

func NewMemoryMatcher(source RecordSource, limit int) *MemoryMatcher {
	if limit <= 0 {
		limit = DefaultStreamLimit
	}
	return &MemoryMatcher{source: source, limit: limit}
}

func (m *MemoryMatcher) MatchTickers(ctx context.Context, pattern string) ([]models.MatchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.MatchCandidate
	for _, t := range m.source.Tickers() {
		score := FieldScore(t.Ticker, pattern)
		if score == 0 {
			continue
		}
		rows = append(rows, models.MatchCandidate{
			CompanyID:   t.CompanyID,
			Symbol:      t.Ticker,
			CompanyName: t.CompanyName,
			TickerScore: models.Score(score),
		})
	}
	return capStream(rows, m.limit, tickerSide), nil
}

func (m *MemoryMatcher) MatchCompanies(ctx context.Context, pattern string) ([]models.MatchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	companies := m.source.Companies()
	scores := make(map[int]float64)
	for _, c := range companies {
		if c.SearchKey == "" {
			continue
		}
		if score := FieldScore(c.SearchKey, pattern); score > 0 {
			scores[c.ID] = score
		}
	}

	var rows []models.MatchCandidate
	listed := make(map[int]bool)
	for _, t := range m.source.Tickers() {
		score, ok := scores[t.CompanyID]
		if !ok {
			continue
		}
		listed[t.CompanyID] = true
		rows = append(rows, models.MatchCandidate{
			CompanyID:    t.CompanyID,
			Symbol:       t.Ticker,
			CompanyName:  t.CompanyName,
			CompanyScore: models.Score(score),
		})
	}
	// Companies without tickers still surface, symbol-less.
	for _, c := range companies {
		if score, ok := scores[c.ID]; ok && !listed[c.ID] {
			rows = append(rows, models.MatchCandidate{
				CompanyID:    c.ID,
				CompanyName:  c.Name,
				CompanyScore: models.Score(score),
			})
		}
	}
	return capStream(rows, m.limit, companySide), nil
}

type side func(models.MatchCandidate) float64

func tickerSide(c models.MatchCandidate) float64  { return orZero(c.TickerScore) }
func companySide(c models.MatchCandidate) float64 { return orZero(c.CompanyScore) }

// capStream orders rows by descending score (symbol ascending on ties) and
// keeps the first limit.
func capStream(rows []models.MatchCandidate, limit int, score side) []models.MatchCandidate {
	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := score(rows[i]), score(rows[j])
		if si != sj {
			return si > sj
		}
		return strings.ToUpper(rows[i].Symbol) < strings.ToUpper(rows[j].Symbol)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
