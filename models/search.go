package models

// MatchCandidate is one row produced by a similarity stream. Only the side
// that produced the row carries a score; the other side is nil.
type MatchCandidate struct {
	CompanyID    int
	Symbol       string
	CompanyName  string
	TickerScore  *float64
	CompanyScore *float64
}

// RankedResult is a single autocomplete suggestion.
type RankedResult struct {
	Symbol string  `json:"symbol" msgpack:"s"`
	Name   string  `json:"name" msgpack:"n"`
	Score  float64 `json:"score" msgpack:"v"`
}

// AutocompleteResponse echoes the caller's query verbatim (nil when absent).
type AutocompleteResponse struct {
	Query   *string        `json:"query"`
	Results []RankedResult `json:"results"`
}

// Score returns a pointer to v, for building candidates.
func Score(v float64) *float64 {
	return &v
}
