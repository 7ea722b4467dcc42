package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stock-catalog/catalog"
	"stock-catalog/models"
	"stock-catalog/search"
)

var testOrigins = []string{"http://localhost:3000"}

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	store := catalog.NewStore()
	companies := map[int]string{
		320193:  "Apple Inc.",
		1158449: "Advance Auto Parts Inc",
		789019:  "Microsoft Corporation",
	}
	for id, name := range companies {
		_, err := store.PutCompany(id, name)
		require.NoError(t, err)
	}
	for sym, id := range map[string]int{"AAPL": 320193, "AAP": 1158449, "MSFT": 789019} {
		_, err := store.PutTicker(models.TickerSummary{Ticker: sym, CompanyID: id, PreviousClose: decimal.NewFromInt(100)})
		require.NoError(t, err)
	}
	return store
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := newTestStore(t)
	svc := search.NewService(search.NewMemoryMatcher(store, 0), zap.NewNop())
	return NewRouter(NewHandler(svc, store), zap.NewNop(), testOrigins)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

type autocompleteBody struct {
	Query   *string `json:"query"`
	Results []struct {
		Symbol string  `json:"symbol"`
		Name   string  `json:"name"`
		Score  float64 `json:"score"`
	} `json:"results"`
}

func TestAutocomplete_EndToEnd(t *testing.T) {
	rr := get(t, newTestRouter(t), "/search/auto-complete?query=aap")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	body := decode[autocompleteBody](t, rr)
	require.NotNil(t, body.Query)
	assert.Equal(t, "aap", *body.Query)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "AAP", body.Results[0].Symbol)
	assert.Equal(t, "Advance Auto Parts Inc", body.Results[0].Name)
	assert.Equal(t, "AAPL", body.Results[1].Symbol)
	assert.GreaterOrEqual(t, body.Results[0].Score, body.Results[1].Score)
}

func TestAutocomplete_MissingAndBlankQuery(t *testing.T) {
	router := newTestRouter(t)

	rr := get(t, router, "/search/auto-complete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"query":null,"results":[]}`, rr.Body.String())

	rr = get(t, router, "/search/auto-complete?query=%20%20")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"query":"  ","results":[]}`, rr.Body.String())
}

func TestAutocomplete_SearchInputAlias(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/v1/search/auto-complete?searchInput=Microsoft")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode[autocompleteBody](t, rr)
	assert.Equal(t, "Microsoft", *body.Query)
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "MSFT", body.Results[0].Symbol)
}

type failingSearch struct{}

func (failingSearch) Autocomplete(context.Context, *string) (models.AutocompleteResponse, error) {
	return models.AutocompleteResponse{}, errors.New("match tickers: connection reset")
}

func TestAutocomplete_MatcherFailureIs500(t *testing.T) {
	router := NewRouter(NewHandler(failingSearch{}, catalog.NewStore()), zap.NewNop(), testOrigins)

	rr := get(t, router, "/search/auto-complete?query=aapl")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":"internal_error","message":"internal error"}`, rr.Body.String())
}

func TestCompanyLookup(t *testing.T) {
	router := newTestRouter(t)

	rr := get(t, router, "/api/v1/cik-lookup/320193")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"cik":320193,"companyName":"Apple Inc."}`, rr.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/v1/cik-lookup/1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/cik-lookup/apple").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/cik-lookup/-5").Code)
}

func TestTickerSummary(t *testing.T) {
	router := newTestRouter(t)

	rr := get(t, router, "/api/v1/ticker-summary/aapl")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.Equal(t, "AAPL", body["ticker"])
	assert.Equal(t, "Apple Inc.", body["companyName"])
	assert.Nil(t, body["peRatio"])

	rr = get(t, router, "/api/v1/ticker-summary/NOPE")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, rr).Code)
}

func TestListTickerSummaries(t *testing.T) {
	router := newTestRouter(t)

	rr := get(t, router, "/api/v1/ticker-summary?query=aa&pageSize=5&sortBy=ticker&sortOrder=desc")
	require.Equal(t, http.StatusOK, rr.Code)

	page := decode[models.Page[models.TickerSummary]](t, rr)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 5, page.PageSize)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "AAPL", page.Content[0].Ticker)
	assert.Equal(t, "AAP", page.Content[1].Ticker)
}

func TestListTickerSummaries_BadParams(t *testing.T) {
	router := newTestRouter(t)

	for _, q := range []string{
		"pageSize=7",
		"page=-1",
		"page=abc",
		"sortBy=volume",
		"sortOrder=sideways",
		"minPe=cheap",
		"maxMarketCap=1e9x",
	} {
		t.Run(q, func(t *testing.T) {
			rr := get(t, router, "/api/v1/ticker-summary?"+q)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "bad_request", decode[errorResponse](t, rr).Code)
		})
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	store := catalog.NewStore()

	h := NewHandler(failingSearch{}, store)
	rr := get(t, NewRouter(h, zap.NewNop(), testOrigins), "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	h = NewHandler(failingSearch{}, store).WithHealthCheck("cache", stubPinger{err: errors.New("down")})
	rr = get(t, NewRouter(h, zap.NewNop(), testOrigins), "/health")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"cache":"unavailable"}}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	_ = get(t, router, "/health")

	rr := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "stock_catalog_http_requests_total")
}

func TestRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := get(t, h, "/")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":"internal_error","message":"internal error"}`, rr.Body.String())
}

func TestIndex(t *testing.T) {
	rr := get(t, newTestRouter(t), "/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode[indexResponse](t, rr)
	assert.Equal(t, APIVersion, body.Version)
	assert.Equal(t, "/api/v1/search/auto-complete", body.Endpoints["search"])
	assert.Equal(t, "/api/v1/cik-lookup/{cik}", body.Endpoints["cik-lookup"])
	assert.Equal(t, "/api/v1/ticker-summary", body.Endpoints["ticker-summary"])
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/auto-complete?query=aapl", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/ticker-summary", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search/auto-complete?query=aapl", http.NoBody)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
