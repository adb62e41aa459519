package httpadapter

import (
	"net/http"
	"time"

	"github.com/kirillkom/sitedocs/internal/config"
	"github.com/kirillkom/sitedocs/internal/core/ports"
	"github.com/kirillkom/sitedocs/internal/observability/metrics"
)

const serviceName = "api"

// Services are the inbound ports the HTTP adapter drives. Any of them may be
// nil in tests that do not touch the matching routes.
type Services struct {
	Ingestor   ports.DocumentIngestor
	Reader     ports.DocumentReader
	Remover    ports.DocumentRemover
	Classifier ports.FilenameClassifier
	Exporter   ports.DocumentExporter
}

type Router struct {
	cfg       config.Config
	svc       Services
	metrics   *metrics.HTTPServerMetrics
	validator *contractValidator
}

func NewRouter(cfg config.Config, svc Services, httpMetrics *metrics.HTTPServerMetrics) (*Router, error) {
	validator, err := newContractValidator()
	if err != nil {
		return nil, err
	}
	return &Router{
		cfg:       cfg,
		svc:       svc,
		metrics:   httpMetrics,
		validator: validator,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.json", rt.openAPIJSON)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("GET /v1/categories", rt.listCategories)
	mux.HandleFunc("POST /v1/classify", rt.classifyFilename)

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/stats", rt.documentStats)
	mux.HandleFunc("GET /v1/documents/export.xlsx", rt.exportDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/documents/{id}/reclassify", rt.reclassifyDocument)

	var handler http.Handler = mux
	handler = apiKeyMiddleware(handler, rt.cfg.APIKey)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond, rt.recordRejected)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}
