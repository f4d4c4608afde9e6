package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	pagesTotal      *prometheus.CounterVec
	pageDuration    *prometheus.HistogramVec
	pagesInFlight   prometheus.Gauge
	chunksStored    *prometheus.CounterVec
	embedSkipsTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	pagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "pages_total",
			Help:      "Total crawled pages by outcome.",
		},
		[]string{"service", "status"},
	)
	pageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "page_duration_seconds",
			Help:      "Page ingestion duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	pagesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "pages_in_flight",
			Help:      "Number of pages currently being ingested.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksStored := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "chunks_stored_total",
			Help:      "Total chunks stored across all pages.",
		},
		[]string{"service"},
	)
	embedSkipsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "embed_skips_total",
			Help:      "Total chunks skipped because embedding failed.",
		},
		[]string{"service"},
	)

	registry.MustRegister(pagesTotal, pageDuration, pagesInFlight, chunksStored, embedSkipsTotal)

	return &WorkerMetrics{
		registry:        registry,
		pagesTotal:      pagesTotal,
		pageDuration:    pageDuration,
		pagesInFlight:   pagesInFlight,
		chunksStored:    chunksStored,
		embedSkipsTotal: embedSkipsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartPage() {
	m.pagesInFlight.Inc()
}

func (m *WorkerMetrics) FinishPage(service string, result domain.PageResult, duration time.Duration) {
	m.pagesInFlight.Dec()

	status := string(result.Status)
	if status == "" {
		status = "unknown"
	}

	m.pagesTotal.WithLabelValues(service, status).Inc()
	m.pageDuration.WithLabelValues(service, status).Observe(duration.Seconds())

	if result.ChunkCount > 0 {
		m.chunksStored.WithLabelValues(service).Add(float64(result.ChunkCount))
	}
	if result.EmbedSkips > 0 {
		m.embedSkipsTotal.WithLabelValues(service).Add(float64(result.EmbedSkips))
	}
}
