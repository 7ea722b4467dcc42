package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"stock-catalog/catalog"
	"stock-catalog/models"
)

// Autocompleter answers autocomplete queries.
type Autocompleter interface {
	Autocomplete(ctx context.Context, raw *string) (models.AutocompleteResponse, error)
}

// Catalog is the read side of the record store.
type Catalog interface {
	GetCompany(id int) (models.Company, error)
	GetTicker(symbol string) (models.TickerSummary, error)
	List(q catalog.ListQuery) (models.Page[models.TickerSummary], error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	search  Autocompleter
	catalog Catalog
	checks  map[string]Pinger
}

func NewHandler(search Autocompleter, store Catalog) *Handler {
	return &Handler{search: search, catalog: store, checks: make(map[string]Pinger)}
}

// WithHealthCheck adds a dependency probed by /health.
func (h *Handler) WithHealthCheck(name string, p Pinger) *Handler {
	h.checks[name] = p
	return h
}

// Autocomplete handles GET /search/auto-complete. A missing or blank query
// is answered with an empty result list, never with 400.
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.search.Autocomplete(r.Context(), queryParam(r, "query", "searchInput"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryParam returns the first of names present in the URL, verbatim, or nil.
func queryParam(r *http.Request, names ...string) *string {
	values := r.URL.Query()
	for _, name := range names {
		if v, ok := values[name]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
	}
	return nil
}

// CompanyLookup handles GET /api/v1/cik-lookup/{cik}.
func (h *Handler) CompanyLookup(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "cik"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "cik must be a positive integer")
		return
	}

	c, err := h.catalog.GetCompany(id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// TickerSummary handles GET /api/v1/ticker-summary/{ticker}.
func (h *Handler) TickerSummary(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.GetTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListTickerSummaries handles GET /api/v1/ticker-summary.
func (h *Handler) ListTickerSummaries(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	page, err := h.catalog.List(q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// APIVersion is reported by the index endpoint.
const APIVersion = "1.0.0"

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index handles GET / with a short directory of the API.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Message: "Welcome to the stock catalog API",
		Version: APIVersion,
		Endpoints: map[string]string{
			"search":         "/api/v1/search/auto-complete",
			"cik-lookup":     "/api/v1/cik-lookup/{cik}",
			"ticker-summary": "/api/v1/ticker-summary",
			"health":         "/health",
			"metrics":        "/metrics",
		},
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for name, p := range h.checks {
			if err := p.Ping(r.Context()); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	writeJSON(w, status, resp)
}

func parseListQuery(r *http.Request) (catalog.ListQuery, error) {
	v := r.URL.Query()
	q := catalog.ListQuery{
		Query:     strings.TrimSpace(v.Get("query")),
		PageSize:  catalog.DefaultPageSize,
		SortBy:    catalog.SortTicker,
		SortOrder: catalog.Ascending,
	}

	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, paramError("page", s)
		}
	}
	if s := v.Get("pageSize"); s != "" {
		if q.PageSize, err = strconv.Atoi(s); err != nil {
			return q, paramError("pageSize", s)
		}
	}
	if s := v.Get("sortBy"); s != "" {
		q.SortBy = s
	}
	if s := v.Get("sortOrder"); s != "" {
		q.SortOrder = strings.ToUpper(s)
	}

	ranges := []struct {
		name string
		dst  *catalog.Range
	}{
		{"PreviousClose", &q.PreviousClose},
		{"Pe", &q.PE},
		{"ForwardPe", &q.ForwardPE},
		{"DividendYield", &q.DividendYield},
		{"PayoutRatio", &q.PayoutRatio},
	}
	for _, rg := range ranges {
		if rg.dst.Min, err = decimalParam(v, "min"+rg.name); err != nil {
			return q, err
		}
		if rg.dst.Max, err = decimalParam(v, "max"+rg.name); err != nil {
			return q, err
		}
	}
	if q.MinMarketCap, err = int64Param(v, "minMarketCap"); err != nil {
		return q, err
	}
	if q.MaxMarketCap, err = int64Param(v, "maxMarketCap"); err != nil {
		return q, err
	}

	return q, q.Validate()
}
