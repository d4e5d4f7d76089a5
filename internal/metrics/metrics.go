// Package metrics defines the Prometheus collectors for the query engine and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes used as the "outcome" label.
const (
	OutcomeHit         = "hit"
	OutcomeZeroResults = "zero_results"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SearchQueriesTotal *prometheus.CounterVec
	SearchLatency      *prometheus.HistogramVec
	SearchResultsCount prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	IndexLoadsTotal    *prometheus.CounterVec
	IndexLoadDuration  prometheus.Histogram
	IndexedThreads     prometheus.Gauge
	IndexedWords       prometheus.Gauge
}

// New creates all collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kari_search_queries_total",
				Help: "Total search queries by outcome (hit, zero_results, unavailable, rejected, error).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kari_search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kari_search_results_count",
				Help:    "Number of threads returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kari_cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kari_cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		IndexLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kari_index_loads_total",
				Help: "Total index snapshot loads by status.",
			},
			[]string{"status"},
		),
		IndexLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kari_index_load_duration_seconds",
				Help:    "Time taken to load and build an index snapshot.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		IndexedThreads: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kari_indexed_threads",
				Help: "Number of threads in the active snapshot.",
			},
		),
		IndexedWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kari_indexed_words",
				Help: "Number of vocabulary ids in the active snapshot's words index.",
			},
		),
	}

	m.registry.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.IndexLoadsTotal,
		m.IndexLoadDuration,
		m.IndexedThreads,
		m.IndexedWords,
	)
	return m
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSearch records one finished search.
func (m *Metrics) ObserveSearch(outcome string, cached bool, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	status := "miss"
	if cached {
		status = "hit"
	}
	m.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
	if outcome == OutcomeHit || outcome == OutcomeZeroResults {
		m.SearchResultsCount.Observe(float64(results))
	}
}

// ObserveCache records a result cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

// ObserveIndexLoad records a snapshot load attempt.
func (m *Metrics) ObserveIndexLoad(err error, elapsed time.Duration, threads, words int) {
	if m == nil {
		return
	}
	if err != nil {
		m.IndexLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.IndexLoadsTotal.WithLabelValues("ok").Inc()
	m.IndexLoadDuration.Observe(elapsed.Seconds())
	m.IndexedThreads.Set(float64(threads))
	m.IndexedWords.Set(float64(words))
}
