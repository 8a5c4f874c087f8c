// Package metrics provides Prometheus metrics for Insight.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Metrics implements the recorder port.
var _ driven.Recorder = (*Metrics)(nil)

const namespace = "insight"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for Insight.
type Metrics struct {
	registry *prometheus.Registry

	// Search metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration prometheus.Histogram
	SearchResultsTotal    prometheus.Counter

	// Embedding metrics
	EmbedCallsTotal *prometheus.CounterVec
	EmbedDuration   prometheus.Histogram
	EmbedTextsTotal prometheus.Counter

	// Ingestion metrics
	IngestRecordsTotal *prometheus.CounterVec

	// Index metrics
	IndexRecords prometheus.Gauge

	StartTime time.Time
}

// New creates all metrics on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry creates all metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		registry:  reg,
		StartTime: time.Now(),
	}

	m.SearchRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"filtered", "status"},
	)

	m.SearchRequestDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Duration of search requests in seconds, embedding included",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	m.SearchResultsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Total number of search results returned",
		},
	)

	m.EmbedCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_calls_total",
			Help:      "Total number of embedding calls",
		},
		[]string{"status"},
	)

	m.EmbedDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embed_duration_seconds",
			Help:      "Duration of embedding calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.EmbedTextsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_texts_total",
			Help:      "Total number of texts embedded",
		},
	)

	m.IngestRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_records_total",
			Help:      "Total number of ingested records by outcome",
		},
		[]string{"outcome"},
	)

	m.IndexRecords = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_records",
			Help:      "Current number of records in the vector index",
		},
	)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the process started recording metrics",
		},
		func() float64 { return time.Since(m.StartTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSearch records one search call.
func (m *Metrics) ObserveSearch(d time.Duration, results int, filtered bool, err error) {
	f := "false"
	if filtered {
		f = "true"
	}
	m.SearchRequestsTotal.WithLabelValues(f, status(err)).Inc()
	m.SearchRequestDuration.Observe(d.Seconds())
	if err == nil {
		m.SearchResultsTotal.Add(float64(results))
	}
}

// ObserveEmbed records one embedding call over n texts.
func (m *Metrics) ObserveEmbed(d time.Duration, n int, err error) {
	m.EmbedCallsTotal.WithLabelValues(status(err)).Inc()
	m.EmbedDuration.Observe(d.Seconds())
	if err == nil {
		m.EmbedTextsTotal.Add(float64(n))
	}
}

// IngestRecord counts one ingestion outcome.
func (m *Metrics) IngestRecord(outcome string) {
	m.IngestRecordsTotal.WithLabelValues(outcome).Inc()
}

// SetIndexSize reports the current number of indexed records.
func (m *Metrics) SetIndexSize(n int) {
	m.IndexRecords.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
