// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "stock_catalog"

// Search metrics.
var (
	AutocompleteCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autocomplete_cache_total",
			Help:      "Autocomplete cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	MatcherDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matcher_duration_seconds",
			Help:      "Similarity matcher latency per stream",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"stream", "outcome"},
	)

	CatalogRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_records",
			Help:      "Number of records held by the catalog",
		},
		[]string{"kind"}, // "company" / "ticker"
	)

	QuoteRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_refresh_total",
			Help:      "Quote refresh attempts per symbol",
		},
		[]string{"status"}, // "updated" / "skipped" / "error"
	)
)

func init() {
	prometheus.MustRegister(AutocompleteCacheTotal)
	prometheus.MustRegister(MatcherDuration)
	prometheus.MustRegister(CatalogRecords)
	prometheus.MustRegister(QuoteRefreshTotal)
}
