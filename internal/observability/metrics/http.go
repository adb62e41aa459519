package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	classifyTotal      *prometheus.CounterVec
	classifyConfidence *prometheus.HistogramVec
	uploadBytes        *prometheus.HistogramVec
	rejectedTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedocs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitedocs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitedocs",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedocs",
			Subsystem: "classifier",
			Name:      "requests_total",
			Help:      "Synchronous filename classifications by resulting category.",
		},
		[]string{"service", "endpoint", "category"},
	)
	classifyConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitedocs",
			Subsystem: "classifier",
			Name:      "confidence",
			Help:      "Distribution of detailed classification confidence.",
			Buckets:   []float64{0, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1},
		},
		[]string{"service", "endpoint"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitedocs",
			Subsystem: "documents",
			Name:      "upload_bytes",
			Help:      "Size of accepted document uploads.",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
		},
		[]string{"service"},
	)
	rejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedocs",
			Subsystem: "http",
			Name:      "rejected_total",
			Help:      "Requests rejected by traffic control, by reason.",
		},
		[]string{"service", "reason"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		classifyTotal,
		classifyConfidence,
		uploadBytes,
		rejectedTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		classifyTotal:      classifyTotal,
		classifyConfidence: classifyConfidence,
		uploadBytes:        uploadBytes,
		rejectedTotal:      rejectedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps label cardinality bounded by collapsing document ids.
func normalizePath(path string) string {
	rest, ok := strings.CutPrefix(path, "/v1/documents/")
	if !ok || rest == "" {
		return path
	}
	switch {
	case rest == "stats" || rest == "export.xlsx":
		return path
	case strings.HasSuffix(rest, "/reclassify"):
		return "/v1/documents/{id}/reclassify"
	default:
		return "/v1/documents/{id}"
	}
}

func (m *HTTPServerMetrics) RecordClassification(service, endpoint, category string, confidence float64) {
	if category == "" {
		category = "unknown"
	}
	m.classifyTotal.WithLabelValues(service, endpoint, category).Inc()
	m.classifyConfidence.WithLabelValues(service, endpoint).Observe(confidence)
}

func (m *HTTPServerMetrics) RecordUpload(service string, sizeBytes int64) {
	if sizeBytes < 0 {
		return
	}
	m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
}

func (m *HTTPServerMetrics) RecordRejected(service, reason string) {
	m.rejectedTotal.WithLabelValues(service, reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
