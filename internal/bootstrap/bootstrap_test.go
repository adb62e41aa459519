package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/sitedocs/internal/config"
	"github.com/kirillkom/sitedocs/internal/infrastructure/storage/localfs"
)

func TestResilienceConfigMapsMilliseconds(t *testing.T) {
	got := ResilienceConfig(config.Config{
		ResilienceRetryMaxAttempts:        4,
		ResilienceRetryInitialBackoffMS:   150,
		ResilienceRetryMaxBackoffMS:       900,
		ResilienceRetryMultiplier:         1.5,
		ResilienceBreakerEnabled:          true,
		ResilienceBreakerMinRequests:      5,
		ResilienceBreakerFailureRatio:     0.25,
		ResilienceBreakerOpenTimeoutMS:    2000,
		ResilienceBreakerHalfOpenMaxCalls: -1,
	})

	if got.RetryMaxAttempts != 4 || got.RetryMultiplier != 1.5 {
		t.Fatalf("unexpected retry config %+v", got)
	}
	if got.RetryInitialBackoff != 150*time.Millisecond || got.RetryMaxBackoff != 900*time.Millisecond {
		t.Fatalf("unexpected backoff %+v", got)
	}
	if !got.BreakerEnabled || got.BreakerMinRequests != 5 || got.BreakerOpenTimeout != 2*time.Second {
		t.Fatalf("unexpected breaker config %+v", got)
	}
	if got.BreakerHalfOpenMaxCalls != 0 {
		t.Fatalf("negative half-open calls should clamp to zero, got %d", got.BreakerHalfOpenMaxCalls)
	}
}

func TestNewObjectStorageLocalFS(t *testing.T) {
	storage, err := newObjectStorage(context.Background(), config.Config{
		StorageBackend: config.StorageLocalFS,
		StoragePath:    t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatalf("newObjectStorage() error = %v", err)
	}
	if _, ok := storage.(*localfs.Storage); !ok {
		t.Fatalf("expected localfs storage, got %T", storage)
	}
}

func TestNewObjectStorageRejectsUnknownBackend(t *testing.T) {
	if _, err := newObjectStorage(context.Background(), config.Config{StorageBackend: "ftp"}, nil); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
