package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for loading, filtering and
// categorisation. All methods are safe on a nil receiver.
type Metrics struct {
	Registry           *prometheus.Registry
	RowsLoadedTotal    prometheus.Counter
	RowsDroppedTotal   *prometheus.CounterVec
	SchemaErrorsTotal  prometheus.Counter
	FilterEvalsTotal   prometheus.Counter
	CategorizeBatches  *prometheus.CounterVec
	CategorizeDuration prometheus.Histogram
	CategorizeRetries  prometheus.Counter
	CategoryCacheHits  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	rowsLoaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rows_loaded_total",
		Help: "Rows accepted into a catalog.",
	})
	rowsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_rows_dropped_total",
		Help: "Rows dropped during normalisation by reason.",
	}, []string{"reason"})
	schemaErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_schema_errors_total",
		Help: "Loads rejected because required columns were missing.",
	})
	filterEvals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_filter_evaluations_total",
		Help: "Filter applications over a catalog.",
	})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "categorizer_batches_total",
		Help: "Categorisation batches by outcome.",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "categorizer_batch_duration_seconds",
		Help:    "Latency of categorisation batches including retries.",
		Buckets: prometheus.DefBuckets,
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "categorizer_retries_total",
		Help: "Retry attempts scheduled for categorisation batches.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "categorizer_cache_hits_total",
		Help: "Titles answered from the category cache.",
	})

	registry.MustRegister(rowsLoaded, rowsDropped, schemaErrors, filterEvals,
		batches, duration, retries, cacheHits)

	return &Metrics{
		Registry:           registry,
		RowsLoadedTotal:    rowsLoaded,
		RowsDroppedTotal:   rowsDropped,
		SchemaErrorsTotal:  schemaErrors,
		FilterEvalsTotal:   filterEvals,
		CategorizeBatches:  batches,
		CategorizeDuration: duration,
		CategorizeRetries:  retries,
		CategoryCacheHits:  cacheHits,
	}
}

// AddRowsLoaded counts rows accepted into a catalog.
func (m *Metrics) AddRowsLoaded(n int) {
	if m == nil {
		return
	}
	m.RowsLoadedTotal.Add(float64(n))
}

// AddRowsDropped counts rows dropped for reason.
func (m *Metrics) AddRowsDropped(reason string, n int) {
	if m == nil {
		return
	}
	m.RowsDroppedTotal.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) IncSchemaError() {
	if m == nil {
		return
	}
	m.SchemaErrorsTotal.Inc()
}

func (m *Metrics) IncFilterEval() {
	if m == nil {
		return
	}
	m.FilterEvalsTotal.Inc()
}

// IncBatch counts a categorisation batch by status (ok, failed).
func (m *Metrics) IncBatch(status string) {
	if m == nil {
		return
	}
	m.CategorizeBatches.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.CategorizeDuration.Observe(d.Seconds())
}

func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.CategorizeRetries.Inc()
}

func (m *Metrics) AddCacheHits(n int) {
	if m == nil {
		return
	}
	m.CategoryCacheHits.Add(float64(n))
}
