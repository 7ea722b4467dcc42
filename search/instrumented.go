package search

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stock-catalog/models"
)

// InstrumentedMatcher records per-stream latency and outcome of an inner Matcher.
type InstrumentedMatcher struct {
	inner    Matcher
	duration *prometheus.HistogramVec // labels: stream, outcome
}

func NewInstrumentedMatcher(inner Matcher, duration *prometheus.HistogramVec) *InstrumentedMatcher {
	return &InstrumentedMatcher{inner: inner, duration: duration}
}

func (m *InstrumentedMatcher) MatchTickers(ctx context.Context, pattern string) ([]models.MatchCandidate, error) {
	start := time.Now()
	rows, err := m.inner.MatchTickers(ctx, pattern)
	m.observe("ticker", start, err)
	return rows, err
}

func (m *InstrumentedMatcher) MatchCompanies(ctx context.Context, pattern string) ([]models.MatchCandidate, error) {
	start := time.Now()
	rows, err := m.inner.MatchCompanies(ctx, pattern)
	m.observe("company", start, err)
	return rows, err
}

func (m *InstrumentedMatcher) observe(stream string, start time.Time, err error) {
	if m.duration == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.duration.WithLabelValues(stream, outcome).Observe(time.Since(start).Seconds())
}
