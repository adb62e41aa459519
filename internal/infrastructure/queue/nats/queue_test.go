package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/sitedocs/internal/core/domain"
)

func TestIngestMessageCarriesPublishTime(t *testing.T) {
	publishedAt := time.Date(2024, 1, 27, 9, 30, 0, 123, time.UTC)
	msg := newIngestMessage("documents.ingested", "doc-1", publishedAt)

	id, gotAt, ok := parseIngestMessage(msg)
	if !ok {
		t.Fatalf("expected message to parse")
	}
	if id != "doc-1" {
		t.Fatalf("expected doc-1, got %q", id)
	}
	if !gotAt.Equal(publishedAt) {
		t.Fatalf("expected %v, got %v", publishedAt, gotAt)
	}
}

func TestParseIngestMessageAcceptsBareID(t *testing.T) {
	id, publishedAt, ok := parseIngestMessage(&nats.Msg{Data: []byte(" doc-2\n")})
	if !ok || id != "doc-2" {
		t.Fatalf("expected doc-2, got %q ok=%v", id, ok)
	}
	if !publishedAt.IsZero() {
		t.Fatalf("expected zero publish time, got %v", publishedAt)
	}

	if _, _, ok := parseIngestMessage(&nats.Msg{Data: []byte("  ")}); ok {
		t.Fatalf("expected blank payload to be rejected")
	}
}

func TestPublishedAtContextRoundTrip(t *testing.T) {
	if _, ok := PublishedAt(context.Background()); ok {
		t.Fatalf("expected no publish time on empty context")
	}
	at := time.Unix(1706340000, 0).UTC()
	got, ok := PublishedAt(WithPublishedAt(context.Background(), at))
	if !ok || !got.Equal(at) {
		t.Fatalf("expected %v, got %v ok=%v", at, got, ok)
	}
}

func TestClassifyNATSError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantRecord    bool
	}{
		{name: "canceled", err: context.Canceled, wantRetryable: false, wantRecord: false},
		{name: "no servers", err: nats.ErrNoServers, wantRetryable: true, wantRecord: true},
		{name: "wrapped timeout", err: errors.Join(errors.New("publish"), nats.ErrTimeout), wantRetryable: true, wantRecord: true},
		{name: "circuit open", err: gobreaker.ErrOpenState, wantRetryable: true, wantRecord: true},
		{name: "bad subject", err: nats.ErrBadSubject, wantRetryable: false, wantRecord: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			class := classifyNATSError(tc.err)
			if class.Retryable != tc.wantRetryable || class.RecordFailure != tc.wantRecord {
				t.Fatalf("classifyNATSError(%v) = %+v", tc.err, class)
			}
		})
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	if err := wrapTemporaryIfNeeded(nats.ErrNoServers); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	permanent := nats.ErrBadSubject
	if err := wrapTemporaryIfNeeded(permanent); domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent error to stay as is, got %v", err)
	}
	if wrapTemporaryIfNeeded(nil) != nil {
		t.Fatalf("expected nil")
	}
}
