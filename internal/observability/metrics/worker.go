package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	categoryTotal   *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedocs",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitedocs",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitedocs",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitedocs",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between ingest publish and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	categoryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedocs",
			Subsystem: "worker",
			Name:      "documents_classified_total",
			Help:      "Documents classified by the worker, by category.",
		},
		[]string{"service", "category"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sitedocs",
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker for an operation is not closed.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, queueLag, categoryTotal, breakerState)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		categoryTotal:   categoryTotal,
		breakerState:    breakerState,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordCategory(service, category string) {
	if category == "" {
		category = "unknown"
	}
	m.categoryTotal.WithLabelValues(service, category).Inc()
}

// ObserveBreaker matches resilience.Config.OnStateChange.
func (m *WorkerMetrics) ObserveBreaker(service string) func(operation, from, to string) {
	return func(operation, _, to string) {
		value := 1.0
		if to == "closed" {
			value = 0
		}
		m.breakerState.WithLabelValues(service, operation).Set(value)
	}
}
