package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("metrics scrape returned %d", res.Code)
	}
	return res.Body.String()
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/v1/documents":                    "/v1/documents",
		"/v1/documents/stats":              "/v1/documents/stats",
		"/v1/documents/export.xlsx":        "/v1/documents/export.xlsx",
		"/v1/documents/abc-123":            "/v1/documents/{id}",
		"/v1/documents/abc-123/reclassify": "/v1/documents/{id}/reclassify",
		"/v1/classify":                     "/v1/classify",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPMiddlewareCountsNormalizedPath(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/documents/doc-42", nil))

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `sitedocs_http_requests_total{method="GET",path="/v1/documents/{id}",service="api",status="404"} 1`) {
		t.Fatalf("expected normalized request counter, got:\n%s", body)
	}
}

func TestRecordClassification(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordClassification("api", "classify", "receipt", 0.54)
	m.RecordClassification("api", "classify", "", 0)

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`sitedocs_classifier_requests_total{category="receipt",endpoint="classify",service="api"} 1`,
		`sitedocs_classifier_requests_total{category="unknown",endpoint="classify",service="api"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartDocument()
	m.FinishDocument("worker", 20*time.Millisecond, errors.New("boom"))
	m.RecordCategory("worker", "drawing")
	m.ObserveBreaker("worker")("nats.publish", "closed", "open")

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`sitedocs_worker_document_process_total{service="worker",status="error"} 1`,
		`sitedocs_worker_documents_classified_total{category="drawing",service="worker"} 1`,
		`sitedocs_resilience_breaker_open{operation="nats.publish",service="worker"} 1`,
		`sitedocs_worker_document_process_in_flight{service="worker"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}
