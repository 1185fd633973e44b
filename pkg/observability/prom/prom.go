// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/licensetower/pkg/observability"
)

// Metrics holds the licensetower collectors. It satisfies
// [observability.AnalysisHooks], [observability.CacheHooks] and
// [observability.HTTPHooks].
type Metrics struct {
	analyzeTotal    *prometheus.CounterVec
	analyzeDuration prometheus.Histogram
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec

	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheEntries *prometheus.GaugeVec
	cacheEvicted *prometheus.CounterVec
	cacheFlushes *prometheus.CounterVec
	cacheBytes   prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyzeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_analyze_total",
				Help: "Number of analysis runs by outcome.",
			},
			[]string{"outcome"},
		),
		analyzeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "licensetower_analyze_duration_seconds",
				Help:    "Time taken to analyze a dependency set.",
				Buckets: prometheus.DefBuckets,
			},
		),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_fetch_total",
				Help: "License resolutions by ecosystem and source.",
			},
			[]string{"ecosystem", "source", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "licensetower_fetch_duration_seconds",
				Help:    "Time taken to resolve one package license.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"ecosystem"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_cache_hits_total",
				Help: "Metadata cache hits by keyspace.",
			},
			[]string{"keyspace"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_cache_misses_total",
				Help: "Metadata cache misses by keyspace.",
			},
			[]string{"keyspace"},
		),
		cacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "licensetower_cache_entries",
				Help: "Entries held by each cache keyspace after the last write.",
			},
			[]string{"keyspace"},
		),
		cacheEvicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_cache_evicted_total",
				Help: "Entries removed by eviction or expiry.",
			},
			[]string{"keyspace"},
		),
		cacheFlushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_cache_flush_total",
				Help: "Snapshot writes by outcome.",
			},
			[]string{"outcome"},
		),
		cacheBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "licensetower_cache_snapshot_bytes",
				Help: "Size of the last written snapshot.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_http_requests_total",
				Help: "Registry responses by host and status code.",
			},
			[]string{"host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "licensetower_http_request_duration_seconds",
				Help:    "Registry request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensetower_http_errors_total",
				Help: "Registry requests that failed without a response.",
			},
			[]string{"host"},
		),
	}

	reg.MustRegister(
		m.analyzeTotal,
		m.analyzeDuration,
		m.fetchTotal,
		m.fetchDuration,
		m.cacheHits,
		m.cacheMisses,
		m.cacheEntries,
		m.cacheEvicted,
		m.cacheFlushes,
		m.cacheBytes,
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
	)
	return m
}

// Register installs m as the global analysis, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetAnalysisHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnAnalyzeStart(context.Context, int) {}

func (m *Metrics) OnAnalyzeComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.analyzeTotal.WithLabelValues(outcome(err)).Inc()
	m.analyzeDuration.Observe(d.Seconds())
}

func (m *Metrics) OnFetch(_ context.Context, ecosystem string, cached bool, d time.Duration, err error) {
	source := "registry"
	if cached {
		source = "cache"
	}
	m.fetchTotal.WithLabelValues(ecosystem, source, outcome(err)).Inc()
	if !cached {
		m.fetchDuration.WithLabelValues(ecosystem).Observe(d.Seconds())
	}
}

func (m *Metrics) OnCacheHit(keyspace string)  { m.cacheHits.WithLabelValues(keyspace).Inc() }
func (m *Metrics) OnCacheMiss(keyspace string) { m.cacheMisses.WithLabelValues(keyspace).Inc() }

func (m *Metrics) OnCacheSet(keyspace string, size int) {
	m.cacheEntries.WithLabelValues(keyspace).Set(float64(size))
}

func (m *Metrics) OnCacheEvict(keyspace string, count int) {
	m.cacheEvicted.WithLabelValues(keyspace).Add(float64(count))
}

func (m *Metrics) OnCacheFlush(bytes int, _ time.Duration, err error) {
	m.cacheFlushes.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.cacheBytes.Set(float64(bytes))
	}
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.AnalysisHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
