package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"stock-catalog/models"
)

// DefaultCacheTTL is how long an autocomplete answer may be served from cache.
const DefaultCacheTTL = 15 * time.Minute

const cacheKeyPrefix = "autocomplete:"

// ResponseCache is the side channel the service stores answers in.
// Implementations swallow their own failures: a Get that fails is a miss.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Service answers autocomplete queries.
type Service struct {
	matcher    Matcher
	cache      ResponseCache
	ttl        time.Duration
	limit      int
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewService creates an uncached autocomplete service.
func NewService(matcher Matcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		matcher: matcher,
		ttl:     DefaultCacheTTL,
		limit:   MaxResults,
		logger:  logger,
	}
}

// WithCache enables response caching. cacheTotal (label "result": hit/miss)
// may be nil.
func (s *Service) WithCache(c ResponseCache, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Service {
	s.cache = c
	if ttl > 0 {
		s.ttl = ttl
	}
	s.cacheTotal = cacheTotal
	return s
}

// WithResultLimit lowers the number of results returned; values outside
// 1..MaxResults are ignored.
func (s *Service) WithResultLimit(n int) *Service {
	if n > 0 && n <= MaxResults {
		s.limit = n
	}
	return s
}

// Autocomplete ranks symbols and companies for raw. A nil or blank query is
// answered with no results without touching the matcher or the cache.
// The response always echoes raw as given.
func (s *Service) Autocomplete(ctx context.Context, raw *string) (models.AutocompleteResponse, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return models.AutocompleteResponse{Query: raw, Results: []models.RankedResult{}}, nil
	}

	lowered := strings.ToLower(*raw)
	key := cacheKeyPrefix + lowered

	if results, ok := s.fromCache(ctx, key); ok {
		return models.AutocompleteResponse{Query: raw, Results: results}, nil
	}

	pattern := *SanitizeQuery(&lowered)

	tickers, err := s.matcher.MatchTickers(ctx, pattern)
	if err != nil {
		return models.AutocompleteResponse{}, fmt.Errorf("match tickers: %w", err)
	}
	companies, err := s.matcher.MatchCompanies(ctx, pattern)
	if err != nil {
		return models.AutocompleteResponse{}, fmt.Errorf("match companies: %w", err)
	}

	results := Merge(tickers, companies, s.limit)
	s.toCache(ctx, key, results)

	return models.AutocompleteResponse{Query: raw, Results: results}, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]models.RankedResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, ok := s.cache.Get(ctx, key)
	if !ok {
		s.incCache("miss")
		return nil, false
	}

	var results []models.RankedResult
	if err := msgpack.Unmarshal(data, &results); err != nil {
		s.logger.Warn("Failed to decode cached autocomplete", zap.String("key", key), zap.Error(err))
		s.incCache("miss")
		return nil, false
	}
	if results == nil {
		results = []models.RankedResult{}
	}

	s.incCache("hit")
	return results, true
}

func (s *Service) toCache(ctx context.Context, key string, results []models.RankedResult) {
	if s.cache == nil {
		return
	}

	data, err := msgpack.Marshal(results)
	if err != nil {
		s.logger.Warn("Failed to encode autocomplete for cache", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Put(ctx, key, data, s.ttl)
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}
