package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/sitedocs/internal/infrastructure/resilience"
)

const (
	headerPublishedAt = "Sitedocs-Published-At"
	queueGroup        = "workers"
)

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	now      func() time.Time
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("sitedocs"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	msg := newIngestMessage(q.subject, documentID, q.now())
	call := func(_ context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if err := q.executor.Execute(ctx, "nats.publish", call, classifyNATSError); err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		documentID, publishedAt, ok := parseIngestMessage(msg)
		if !ok {
			slog.Warn("nats_message_dropped", "subject", msg.Subject, "reason", "empty document id")
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if !publishedAt.IsZero() {
			handlerCtx = WithPublishedAt(handlerCtx, publishedAt)
		}
		if err := handler(handlerCtx, documentID); err != nil {
			slog.Error("worker_handler_error", "document_id", documentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func newIngestMessage(subject, documentID string, publishedAt time.Time) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Data = []byte(documentID)
	msg.Header.Set(headerPublishedAt, publishedAt.Format(time.RFC3339Nano))
	return msg
}

// parseIngestMessage accepts bare-id messages without headers as well.
func parseIngestMessage(msg *nats.Msg) (string, time.Time, bool) {
	documentID := strings.TrimSpace(string(msg.Data))
	if documentID == "" {
		return "", time.Time{}, false
	}
	var publishedAt time.Time
	if msg.Header != nil {
		if raw := msg.Header.Get(headerPublishedAt); raw != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				publishedAt = parsed
			}
		}
	}
	return documentID, publishedAt, true
}

type publishedAtKey struct{}

// WithPublishedAt records when the ingest event left the API.
func WithPublishedAt(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, publishedAtKey{}, t)
}

// PublishedAt returns the publish time carried by a delivered message.
func PublishedAt(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(publishedAtKey{}).(time.Time)
	return t, ok
}
