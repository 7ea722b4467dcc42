package search

import (
	"sort"
	"strings"

	"stock-catalog/models"
)

// MaxResults is the hard cap on an autocomplete answer.
const MaxResults = 10

type joinKey struct {
	companyID int
	symbol    string
}

type joined struct {
	companyID   int
	symbol      string
	name        string
	tickerScore float64
}

// Merge full-outer-joins the ticker and company streams on company id and
// ranks the joined rows by the mean of both side scores, a missing side
// counting as 0. The company score belongs to the company, so it applies to
// every symbol of that company found by either stream. Ties are broken by
// ascending symbol, then ascending company id. At most limit (never more
// than MaxResults) results are returned.
func Merge(tickers, companies []models.MatchCandidate, limit int) []models.RankedResult {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	rows := make(map[joinKey]*joined)
	upsert := func(c models.MatchCandidate) *joined {
		k := joinKey{companyID: c.CompanyID, symbol: strings.ToUpper(c.Symbol)}
		j, ok := rows[k]
		if !ok {
			j = &joined{companyID: c.CompanyID, symbol: c.Symbol}
			rows[k] = j
		}
		if j.name == "" {
			j.name = c.CompanyName
		}
		return j
	}

	for _, c := range tickers {
		j := upsert(c)
		if s := orZero(c.TickerScore); s > j.tickerScore {
			j.tickerScore = s
		}
	}

	companyScores := make(map[int]float64)
	companyNames := make(map[int]string)
	bare := make(map[int]bool)
	for _, c := range companies {
		if s := orZero(c.CompanyScore); s > companyScores[c.CompanyID] {
			companyScores[c.CompanyID] = s
		}
		if companyNames[c.CompanyID] == "" {
			companyNames[c.CompanyID] = c.CompanyName
		}
		if c.Symbol == "" {
			bare[c.CompanyID] = true
			continue
		}
		upsert(c)
	}

	// A company matched only by name with no symbol on either side still
	// surfaces once.
	listed := make(map[int]bool, len(rows))
	for k := range rows {
		listed[k.companyID] = true
	}
	for id := range bare {
		if !listed[id] {
			rows[joinKey{companyID: id}] = &joined{companyID: id, name: companyNames[id]}
		}
	}

	type ranked struct {
		models.RankedResult
		companyID int
	}
	out := make([]ranked, 0, len(rows))
	for _, j := range rows {
		name := j.name
		if name == "" {
			name = companyNames[j.companyID]
		}
		out = append(out, ranked{
			RankedResult: models.RankedResult{
				Symbol: j.symbol,
				Name:   name,
				Score:  (j.tickerScore + companyScores[j.companyID]) / 2.0,
			},
			companyID: j.companyID,
		})
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		if out[a].Symbol != out[b].Symbol {
			return out[a].Symbol < out[b].Symbol
		}
		return out[a].companyID < out[b].companyID
	})
	if len(out) > limit {
		out = out[:limit]
	}

	results := make([]models.RankedResult, len(out))
	for i, r := range out {
		results[i] = r.RankedResult
	}
	return results
}
