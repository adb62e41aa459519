package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/sitedocs/internal/bootstrap"
	"github.com/kirillkom/sitedocs/internal/config"
	"github.com/kirillkom/sitedocs/internal/infrastructure/queue/nats"
	"github.com/kirillkom/sitedocs/internal/observability/logging"
	"github.com/kirillkom/sitedocs/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)

	app, err := bootstrap.New(ctx, cfg, bootstrap.WithBreakerObserver(workerMetrics.ObserveBreaker(serviceName)))
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	timeout := time.Duration(cfg.WorkerProcessTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "timeout", timeout.String())
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		if publishedAt, ok := nats.PublishedAt(handlerCtx); ok {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(publishedAt))
		}

		processCtx, cancel := context.WithTimeout(handlerCtx, timeout)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		err := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(serviceName, time.Since(start), err)
		if err != nil {
			return err
		}

		doc, err := app.QueryUC.GetByID(handlerCtx, documentID)
		if err != nil {
			logger.Warn("document_reload_failed", "document_id", documentID, "error", err)
			return nil
		}
		workerMetrics.RecordCategory(serviceName, string(doc.Category))
		logger.Info("document_processed",
			"document_id", documentID,
			"category", doc.Category,
			"confidence", doc.Confidence,
			"page_count", doc.PageCount,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
