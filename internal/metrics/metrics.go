// Package metrics holds the Prometheus collectors for the reading log.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Search outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeCanceled   = "canceled"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

// Metrics bundles Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry             *prometheus.Registry
	CatalogSearchesTotal *prometheus.CounterVec
	CatalogSearchSeconds prometheus.Histogram
	CatalogCacheHits     prometheus.Counter
	ShelfMutationsTotal  *prometheus.CounterVec
	ReviewsSavedTotal    *prometheus.CounterVec
	ReviewsGenerated     prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
	StorageErrorsTotal   *prometheus.CounterVec
	SSEClients           prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readinglog_catalog_searches_total",
			Help: "Catalog searches by outcome.",
		},
		[]string{"outcome"},
	)
	searchSeconds := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "readinglog_catalog_search_duration_seconds",
			Help:    "Catalog search latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "readinglog_catalog_cache_hits_total",
			Help: "Catalog searches answered from the response cache.",
		},
	)
	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readinglog_shelf_mutations_total",
			Help: "Shelf mutations by operation.",
		},
		[]string{"operation"},
	)
	reviews := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readinglog_reviews_saved_total",
			Help: "Saved reviews by type.",
		},
		[]string{"type"},
	)
	generated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "readinglog_reviews_generated_total",
			Help: "Generated review drafts.",
		},
	)
	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readinglog_notifications_total",
			Help: "Notifications emitted by variant.",
		},
		[]string{"variant"},
	)
	storageErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readinglog_storage_errors_total",
			Help: "Persistence failures by operation.",
		},
		[]string{"operation"},
	)
	sseClients := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "readinglog_sse_clients",
			Help: "Connected event-stream clients.",
		},
	)

	registry.MustRegister(
		searches, searchSeconds, cacheHits, mutations, reviews,
		generated, notifications, storageErrors, sseClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:             registry,
		CatalogSearchesTotal: searches,
		CatalogSearchSeconds: searchSeconds,
		CatalogCacheHits:     cacheHits,
		ShelfMutationsTotal:  mutations,
		ReviewsSavedTotal:    reviews,
		ReviewsGenerated:     generated,
		NotificationsTotal:   notifications,
		StorageErrorsTotal:   storageErrors,
		SSEClients:           sseClients,
	}
}

// ObserveSearch records a finished catalog search.
func (m *Metrics) ObserveSearch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CatalogSearchesTotal.WithLabelValues(outcome).Inc()
	m.CatalogSearchSeconds.Observe(d.Seconds())
}

// IncCacheHit increments the catalog cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CatalogCacheHits.Inc()
}

// IncMutation increments the shelf mutation counter for an operation.
func (m *Metrics) IncMutation(operation string) {
	if m == nil {
		return
	}
	m.ShelfMutationsTotal.WithLabelValues(operation).Inc()
}

// IncReviewSaved increments the saved review counter.
func (m *Metrics) IncReviewSaved(reviewType string) {
	if m == nil {
		return
	}
	m.ReviewsSavedTotal.WithLabelValues(reviewType).Inc()
}

// IncReviewGenerated increments the generated review counter.
func (m *Metrics) IncReviewGenerated() {
	if m == nil {
		return
	}
	m.ReviewsGenerated.Inc()
}

// IncNotification increments the notification counter.
func (m *Metrics) IncNotification(variant string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(variant).Inc()
}

// IncStorageError increments the storage error counter.
func (m *Metrics) IncStorageError(operation string) {
	if m == nil {
		return
	}
	m.StorageErrorsTotal.WithLabelValues(operation).Inc()
}

// SetSSEClients sets the connected client gauge.
func (m *Metrics) SetSSEClients(n int) {
	if m == nil {
		return
	}
	m.SSEClients.Set(float64(n))
}
