// Package metrics bundles the Prometheus collectors for a crawl run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics bundles Prometheus collectors for the fetcher and orchestrator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	RetriesTotal    prometheus.Counter
	PagesTotal      prometheus.Counter
	BooksTotal      prometheus.Counter
	ItemsSkipped    *prometheus.CounterVec
	DetailFailures  prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_requests_total",
			Help: "HTTP requests issued by the fetcher, by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "books_request_duration_seconds",
			Help:    "HTTP request latency for fetcher requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "books_retries_total",
			Help: "Retry attempts made after a failed request.",
		},
	)
	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "books_pages_total",
			Help: "Catalog pages parsed.",
		},
	)
	books := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "books_scraped_total",
			Help: "Unique books added to the dataset.",
		},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_items_skipped_total",
			Help: "Listing items not added to the dataset, by reason.",
		},
		[]string{"reason"},
	)
	detailFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "books_detail_failures_total",
			Help: "Detail pages that degraded to default values.",
		},
	)

	registry.MustRegister(requests, requestDuration, retries, pages, books, skipped, detailFailures)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		RetriesTotal:    retries,
		PagesTotal:      pages,
		BooksTotal:      books,
		ItemsSkipped:    skipped,
		DetailFailures:  detailFailures,
	}
}

// IncRequest increments the requests counter for an outcome label.
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncPages increments the parsed pages counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

// IncBooks increments the unique books counter.
func (m *Metrics) IncBooks() {
	if m == nil {
		return
	}
	m.BooksTotal.Inc()
}

// IncSkipped increments the skipped items counter for a reason label.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.ItemsSkipped.WithLabelValues(reason).Inc()
}

// IncDetailFailures increments the degraded detail counter.
func (m *Metrics) IncDetailFailures() {
	if m == nil {
		return
	}
	m.DetailFailures.Inc()
}

// Retries returns the number of retries recorded so far.
func (m *Metrics) Retries() int {
	if m == nil {
		return 0
	}
	return int(counterValue(m.RetriesTotal))
}

// Requests returns the request count for one outcome label.
func (m *Metrics) Requests(outcome string) int {
	if m == nil {
		return 0
	}
	return int(counterValue(m.RequestsTotal.WithLabelValues(outcome)))
}

func counterValue(c prometheus.Counter) float64 {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}
