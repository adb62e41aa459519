package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/sitedocs/internal/config"
	"github.com/kirillkom/sitedocs/internal/core/ports"
	"github.com/kirillkom/sitedocs/internal/core/usecase"
	"github.com/kirillkom/sitedocs/internal/infrastructure/classifier/filename"
	"github.com/kirillkom/sitedocs/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/sitedocs/internal/infrastructure/inspector/pdfinfo"
	"github.com/kirillkom/sitedocs/internal/infrastructure/queue/nats"
	"github.com/kirillkom/sitedocs/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/sitedocs/internal/infrastructure/resilience"
	"github.com/kirillkom/sitedocs/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/sitedocs/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.DocumentRepository
	Executor *resilience.Executor

	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.DocumentProcessor
	QueryUC    *usecase.QueryUseCase
	ClassifyUC ports.FilenameClassifier
	ExportUC   ports.DocumentExporter

	closeFn func()
}

type Option func(*options)

type options struct {
	onBreakerChange func(operation, from, to string)
}

// WithBreakerObserver reports circuit breaker transitions of the queue and
// storage adapters, e.g. to a metrics gauge.
func WithBreakerObserver(fn func(operation, from, to string)) Option {
	return func(o *options) {
		o.onBreakerChange = fn
	}
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	resilienceCfg := ResilienceConfig(cfg)
	resilienceCfg.OnStateChange = o.onBreakerChange
	executor := resilience.NewExecutor(resilienceCfg)

	storage, err := newObjectStorage(ctx, cfg, executor)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	inspector := pdfinfo.New(storage, int64(cfg.PDFInspectMaxMB)<<20)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, filename.New(), inspector)
	queryUC := usecase.NewQueryUseCase(repo)
	exportUC := usecase.NewExportUseCase(repo, xlsx.NewWriter())

	return &App{
		Config:   cfg,
		Queue:    queue,
		Repo:     repo,
		Executor: executor,

		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		QueryUC:    queryUC,
		ClassifyUC: usecase.NewClassifyUseCase(),
		ExportUC:   exportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// ResilienceConfig maps RESILIENCE_* settings onto the executor config.
func ResilienceConfig(cfg config.Config) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:        cfg.ResilienceRetryMaxAttempts,
		RetryInitialBackoff:     time.Duration(cfg.ResilienceRetryInitialBackoffMS) * time.Millisecond,
		RetryMaxBackoff:         time.Duration(cfg.ResilienceRetryMaxBackoffMS) * time.Millisecond,
		RetryMultiplier:         cfg.ResilienceRetryMultiplier,
		BreakerEnabled:          cfg.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.ResilienceBreakerOpenTimeoutMS) * time.Millisecond,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.ResilienceBreakerHalfOpenMaxCalls, 0)),
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		storage, err := s3.New(s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
			Prefix:    cfg.S3Prefix,
		}, executor)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage, nil
	case config.StorageLocalFS, "":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
