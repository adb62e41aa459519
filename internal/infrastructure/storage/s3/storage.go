package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/infrastructure/resilience"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// Prefix is prepended to every object key, e.g. "sitedocs/".
	Prefix string
}

// Storage keeps uploaded documents in an S3-compatible bucket.
type Storage struct {
	api      *minio.Client
	bucket   string
	region   string
	prefix   string
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) (*Storage, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Storage{
		api:      client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		prefix:   strings.TrimLeft(cfg.Prefix, "/"),
		executor: executor,
	}, nil
}

// EnsureBucket creates the bucket on first start.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.executor.Execute(ctx, "s3.ensure_bucket", func(callCtx context.Context) error {
		exists, err := s.api.BucketExists(callCtx, s.bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", s.bucket, err)
		}
		if exists {
			return nil
		}
		if err := s.api.MakeBucket(callCtx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		return nil
	}, classifyS3Error)
}

// Save streams the upload; it runs once because the reader cannot be
// rewound, but still counts against the breaker.
func (s *Storage) Save(ctx context.Context, key string, data io.Reader) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	err = s.executor.Execute(ctx, "s3.put", func(callCtx context.Context) error {
		_, err := s.api.PutObject(callCtx, s.bucket, objectKey, data, -1, minio.PutObjectOptions{
			ContentType: doctype.MimeTypeFromExtension(key),
		})
		if err != nil {
			return fmt.Errorf("put object %s: %w", objectKey, err)
		}
		return nil
	}, func(err error) resilience.ErrorClassification {
		class := classifyS3Error(err)
		class.Retryable = false
		return class
	})
	return wrapS3Error("save object", err)
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	obj, err := resilience.Do(ctx, s.executor, "s3.get", func(callCtx context.Context) (*minio.Object, error) {
		obj, err := s.api.GetObject(callCtx, s.bucket, objectKey, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("get object %s: %w", objectKey, err)
		}
		// GetObject is lazy; Stat surfaces a missing key before the caller reads.
		if _, err := obj.Stat(); err != nil {
			_ = obj.Close()
			return nil, fmt.Errorf("stat object %s: %w", objectKey, err)
		}
		return obj, nil
	}, classifyS3Error)
	if err != nil {
		return nil, wrapS3Error("open object", err)
	}
	return obj, nil
}

// Delete removes an object; S3 deletes are idempotent, so NoSuchKey is success.
func (s *Storage) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	err = s.executor.Execute(ctx, "s3.delete", func(callCtx context.Context) error {
		if err := s.api.RemoveObject(callCtx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object %s: %w", objectKey, err)
		}
		return nil
	}, classifyS3Error)
	if errorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return wrapS3Error("delete object", err)
}

func (s *Storage) objectKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve object key", fmt.Errorf("key=%q", key))
	}
	return s.prefix + key, nil
}

func classifyS3Error(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	resp := errorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket":
		return resilience.Ignored
	case resp.StatusCode >= http.StatusInternalServerError, resp.Code == "SlowDown":
		return resilience.Transient
	case resp.StatusCode >= http.StatusBadRequest:
		return resilience.Ignored
	default:
		// Transport failures carry no S3 error response.
		return resilience.Transient
	}
}

func wrapS3Error(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errorResponse(err).Code == "NoSuchKey" {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, err)
	}
	if classifyS3Error(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

// errorResponse unwraps an S3 error response through our own wrapping.
func errorResponse(err error) minio.ErrorResponse {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}
	return minio.ErrorResponse{}
}
