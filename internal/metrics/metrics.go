// Package metrics provides Prometheus metrics for the photobook pipeline and editor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every metric of the service.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	photosAnalyzed   *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	pagesComposed    prometheus.Counter
	booksComposed    prometheus.Counter
	enrichments      *prometheus.CounterVec
	editIntents      *prometheus.CounterVec
	persistErrors    prometheus.Counter
}

// Option configures a Manager.
type Option func(*Manager)

func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

var globalManager = NewManager()

// NewManager creates a manager with its own registry so default Go metrics stay out.
func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: "photobook"}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.photosAnalyzed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "photos_analyzed_total",
		Help:      "Photos scored by the quality analyzer, by result (scored or fallback)",
	}, []string{"result"})
	m.analysisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time spent analyzing one photo",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	m.pagesComposed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "pages_composed_total",
		Help:      "Pages generated by the composer",
	})
	m.booksComposed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "books_composed_total",
		Help:      "Books generated by the composer",
	})
	m.enrichments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "enrichment_requests_total",
		Help:      "Narrative enrichment requests by provider and result",
	}, []string{"provider", "result"})
	m.editIntents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "edit_intents_total",
		Help:      "Editor intents by kind and whether they changed the book",
	}, []string{"kind", "changed"})
	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "persist_errors_total",
		Help:      "Failed best-effort saves of edited books",
	})

	return m
}

// Handler exposes the global registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// Registry returns the global registry.
func Registry() *prometheus.Registry {
	return globalManager.registry
}

// RecordPhotoAnalyzed counts one analyzed photo.
func RecordPhotoAnalyzed(fallback bool, seconds float64) {
	result := "scored"
	if fallback {
		result = "fallback"
	}
	globalManager.photosAnalyzed.WithLabelValues(result).Inc()
	globalManager.analysisDuration.Observe(seconds)
}

// RecordBookComposed counts a composed book and its pages.
func RecordBookComposed(pages int) {
	globalManager.booksComposed.Inc()
	globalManager.pagesComposed.Add(float64(pages))
}

// RecordEnrichment counts an enrichment attempt. Result is "ok", "error" or "timeout".
func RecordEnrichment(provider, result string) {
	globalManager.enrichments.WithLabelValues(provider, result).Inc()
}

// RecordEditIntent counts one editor intent.
func RecordEditIntent(kind string, changed bool) {
	c := "false"
	if changed {
		c = "true"
	}
	globalManager.editIntents.WithLabelValues(kind, c).Inc()
}

// RecordPersistError counts a failed save.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}
