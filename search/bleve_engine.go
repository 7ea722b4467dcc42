package search

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"stock-catalog/models"
)

// candidateFactor sizes the first bleve page; when more documents match,
// the rest are fetched before rescoring.
const candidateFactor = 4

// Indexed field names.
const (
	fieldSymbol         = "symbol"
	fieldSymbolKey      = "symbol_key"
	fieldSymbolGrams    = "symbol_grams"
	fieldCompanyID      = "company_id"
	fieldCompanyName    = "company_name"
	fieldSearchKey      = "search_key"
	fieldSearchKeyGrams = "search_key_grams"
)

var storedFields = []string{fieldSymbol, fieldCompanyID, fieldCompanyName, fieldSearchKey}

// BleveMatcher serves both similarity streams from a bleve index holding one
// document per ticker. Each field is indexed with its padded trigram set, so
// bleve narrows the candidates by exact term, literal prefix and enough
// shared trigrams to reach MatchThreshold; every candidate is then rescored
// with FieldScore so both streams honour the same contract as MemoryMatcher.
type BleveMatcher struct {
	index  bleve.Index
	limit  int
	logger *zap.Logger
}

// NewBleveMatcher opens the index at indexPath, creating and filling it from
// source when it does not exist or rebuild is set. An empty indexPath keeps
// the index in memory.
func NewBleveMatcher(indexPath string, source RecordSource, rebuild bool, limit int, logger *zap.Logger) (*BleveMatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultStreamLimit
	}

	m := &BleveMatcher{limit: limit, logger: logger}

	if indexPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		m.index = index
		if err := m.Index(source); err != nil {
			_ = index.Close()
			return nil, err
		}
		return m, nil
	}

	if rebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("failed to remove index %s: %w", indexPath, err)
		}
	}

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
		m.index = index
		if err := m.Index(source); err != nil {
			_ = index.Close()
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	} else {
		m.index = index
		logger.Info("Opened existing search index", zap.String("path", indexPath))
	}

	return m, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	keywordField := bleve.NewKeywordFieldMapping()
	keywordField.Store = true
	keywordField.IncludeInAll = false

	// One keyword term per trigram of the field.
	gramsField := bleve.NewKeywordFieldMapping()
	gramsField.Store = false
	gramsField.IncludeInAll = false
	gramsField.IncludeTermVectors = false

	storedOnly := bleve.NewTextFieldMapping()
	storedOnly.Index = false
	storedOnly.Store = true
	storedOnly.IncludeInAll = false

	idField := bleve.NewNumericFieldMapping()
	idField.Index = false
	idField.Store = true
	idField.IncludeInAll = false

	tickerMapping := bleve.NewDocumentStaticMapping()
	tickerMapping.AddFieldMappingsAt(fieldSymbol, storedOnly)
	tickerMapping.AddFieldMappingsAt(fieldSymbolKey, keywordField)
	tickerMapping.AddFieldMappingsAt(fieldSymbolGrams, gramsField)
	tickerMapping.AddFieldMappingsAt(fieldCompanyID, idField)
	tickerMapping.AddFieldMappingsAt(fieldCompanyName, storedOnly)
	tickerMapping.AddFieldMappingsAt(fieldSearchKey, keywordField)
	tickerMapping.AddFieldMappingsAt(fieldSearchKeyGrams, gramsField)

	indexMapping.DefaultMapping = tickerMapping
	indexMapping.DefaultAnalyzer = keyword.Name

	return indexMapping
}

// Index adds every ticker of source to the index in one batch. Companies
// without any ticker get a symbol-less document so the company stream can
// still find them.
func (m *BleveMatcher) Index(source RecordSource) error {
	if source == nil {
		return nil
	}

	companies := source.Companies()
	keys := make(map[int]string, len(companies))
	for _, c := range companies {
		keys[c.ID] = c.SearchKey
	}

	m.logger.Info("Indexing tickers...")
	batch := m.index.NewBatch()
	listed := make(map[int]bool)
	count := 0
	for _, t := range source.Tickers() {
		if err := batch.Index(docID(t.Ticker), tickerDocument(t, keys[t.CompanyID])); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", t.Ticker, err)
		}
		listed[t.CompanyID] = true
		count++
	}
	bare := 0
	for _, c := range companies {
		if listed[c.ID] {
			continue
		}
		if err := batch.Index(companyDocID(c.ID), companyDocument(c)); err != nil {
			return fmt.Errorf("failed to add company %d to batch: %w", c.ID, err)
		}
		bare++
	}
	if err := m.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	m.logger.Info("Indexing complete", zap.Int("tickers", count), zap.Int("unlisted_companies", bare))
	return nil
}

// Upsert (re)indexes one ticker under the search key of its company.
func (m *BleveMatcher) Upsert(t models.TickerSummary, c models.Company) error {
	t.CompanyName = c.Name
	batch := m.index.NewBatch()
	batch.Delete(companyDocID(c.ID))
	if err := batch.Index(docID(t.Ticker), tickerDocument(t, c.SearchKey)); err != nil {
		return fmt.Errorf("failed to index %s: %w", t.Ticker, err)
	}
	if err := m.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index %s: %w", t.Ticker, err)
	}
	return nil
}

// UpsertCompany re-keys every ticker of c after a create or rename. A
// company with no tickers is indexed as a symbol-less document.
func (m *BleveMatcher) UpsertCompany(c models.Company, tickers []models.TickerSummary) error {
	batch := m.index.NewBatch()
	if len(tickers) == 0 {
		if err := batch.Index(companyDocID(c.ID), companyDocument(c)); err != nil {
			return fmt.Errorf("failed to index company %d: %w", c.ID, err)
		}
	} else {
		batch.Delete(companyDocID(c.ID))
		for _, t := range tickers {
			t.CompanyName = c.Name
			if err := batch.Index(docID(t.Ticker), tickerDocument(t, c.SearchKey)); err != nil {
				return fmt.Errorf("failed to index %s: %w", t.Ticker, err)
			}
		}
	}
	if err := m.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index company %d: %w", c.ID, err)
	}
	return nil
}

// Delete drops a ticker of c from the index. When remaining is zero, c had
// no other ticker and falls back to a symbol-less document.
func (m *BleveMatcher) Delete(symbol string, c models.Company, remaining int) error {
	batch := m.index.NewBatch()
	batch.Delete(docID(symbol))
	if remaining == 0 && c.ID > 0 {
		if err := batch.Index(companyDocID(c.ID), companyDocument(c)); err != nil {
			return fmt.Errorf("failed to index company %d: %w", c.ID, err)
		}
	}
	if err := m.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete %s: %w", symbol, err)
	}
	return nil
}

// DocCount reports the number of indexed documents.
func (m *BleveMatcher) DocCount() (uint64, error) {
	return m.index.DocCount()
}

func docID(symbol string) string {
	return strings.ToUpper(symbol)
}

func companyDocID(id int) string {
	return fmt.Sprintf("cik:%d", id)
}

func companyDocument(c models.Company) map[string]interface{} {
	return map[string]interface{}{
		fieldCompanyID:      float64(c.ID),
		fieldCompanyName:    c.Name,
		fieldSearchKey:      c.SearchKey,
		fieldSearchKeyGrams: trigramTerms(c.SearchKey),
	}
}

func tickerDocument(t models.TickerSummary, searchKey string) map[string]interface{} {
	lower := strings.ToLower(t.Ticker)
	return map[string]interface{}{
		fieldSymbol:         t.Ticker,
		fieldSymbolKey:      lower,
		fieldSymbolGrams:    trigramTerms(lower),
		fieldCompanyID:      float64(t.CompanyID),
		fieldCompanyName:    t.CompanyName,
		fieldSearchKey:      searchKey,
		fieldSearchKeyGrams: trigramTerms(searchKey),
	}
}

// trigramTerms is Trigrams(s) as a sorted slice.
func trigramTerms(s string) []string {
	set := Trigrams(s)
	terms := make([]string, 0, len(set))
	for g := range set {
		terms = append(terms, g)
	}
	sort.Strings(terms)
	return terms
}

func (m *BleveMatcher) MatchTickers(ctx context.Context, pattern string) ([]models.MatchCandidate, error) {
	hits, err := m.candidates(ctx, fieldSymbolKey, fieldSymbolGrams, pattern)
	if err != nil {
		return nil, err
	}

	var rows []models.MatchCandidate
	for _, hit := range hits {
		symbol := getString(hit, fieldSymbol)
		if symbol == "" {
			continue
		}
		score := FieldScore(symbol, pattern)
		if score == 0 {
			continue
		}
		rows = append(rows, models.MatchCandidate{
			CompanyID:   int(getFloat(hit, fieldCompanyID)),
			Symbol:      symbol,
			CompanyName: getString(hit, fieldCompanyName),
			TickerScore: models.Score(score),
		})
	}
	return capStream(rows, m.limit, tickerSide), nil
}

func (m *BleveMatcher) MatchCompanies(ctx context.Context, pattern string) ([]models.MatchCandidate, error) {
	hits, err := m.candidates(ctx, fieldSearchKey, fieldSearchKeyGrams, pattern)
	if err != nil {
		return nil, err
	}

	var rows []models.MatchCandidate
	for _, hit := range hits {
		key := getString(hit, fieldSearchKey)
		if key == "" {
			continue
		}
		score := FieldScore(key, pattern)
		if score == 0 {
			continue
		}
		rows = append(rows, models.MatchCandidate{
			CompanyID:    int(getFloat(hit, fieldCompanyID)),
			Symbol:       getString(hit, fieldSymbol),
			CompanyName:  getString(hit, fieldCompanyName),
			CompanyScore: models.Score(score),
		})
	}
	return capStream(rows, m.limit, companySide), nil
}

// candidates fetches every document holding the exact value, the literal
// prefix, or enough of the pattern's trigrams to possibly reach
// MatchThreshold. Similarity s >= t needs at least t*|trigrams(pattern)|
// shared trigrams, so no row FieldScore would keep is left out.
func (m *BleveMatcher) candidates(ctx context.Context, keyField, gramField, pattern string) ([]map[string]interface{}, error) {
	pattern = strings.ToLower(pattern)

	exact := bleve.NewTermQuery(pattern)
	exact.SetField(keyField)
	exact.SetBoost(10.0)
	queries := []query.Query{exact}

	if prefix := literalPrefix(pattern); prefix != "" {
		prefixQuery := bleve.NewPrefixQuery(prefix)
		prefixQuery.SetField(keyField)
		prefixQuery.SetBoost(5.0)
		queries = append(queries, prefixQuery)
	}

	if grams := trigramTerms(pattern); len(grams) > 0 {
		gramQueries := make([]query.Query, len(grams))
		for i, g := range grams {
			gramQuery := bleve.NewTermQuery(g)
			gramQuery.SetField(gramField)
			gramQueries[i] = gramQuery
		}
		shared := bleve.NewDisjunctionQuery(gramQueries...)
		shared.SetMin(float64(minSharedTrigrams(len(grams))))
		queries = append(queries, shared)
	}

	searchRequest := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	searchRequest.Fields = storedFields
	searchRequest.Size = m.limit * candidateFactor

	searchResults, err := m.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search on %s: %w", keyField, err)
	}
	// Bleve orders hits by its own relevance, not by FieldScore, so a
	// truncated page could drop a better row.
	if searchResults.Total > uint64(len(searchResults.Hits)) {
		searchRequest.Size = int(searchResults.Total)
		if searchResults, err = m.index.SearchInContext(ctx, searchRequest); err != nil {
			return nil, fmt.Errorf("bleve search on %s: %w", keyField, err)
		}
	}

	out := make([]map[string]interface{}, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		out = append(out, hit.Fields)
	}
	return out, nil
}

// minSharedTrigrams is ceil(MatchThreshold * n) for the fixed 0.2 threshold.
func minSharedTrigrams(n int) int {
	return (n + 4) / 5
}

func getString(fields map[string]interface{}, key string) string {
	if val, ok := fields[key].(string); ok {
		return val
	}
	return ""
}

func getFloat(fields map[string]interface{}, key string) float64 {
	if val, ok := fields[key].(float64); ok {
		return val
	}
	return 0.0
}

func (m *BleveMatcher) Close() error {
	return m.index.Close()
}
