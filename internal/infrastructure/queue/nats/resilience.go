package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/infrastructure/resilience"
)

// transientErrors are connection states the client recovers from on its own.
var transientErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	for _, target := range transientErrors {
		if errors.Is(err, target) {
			return resilience.Transient
		}
	}
	return resilience.Permanent
}

// wrapTemporaryIfNeeded lets the HTTP layer answer 503 when the broker is
// unavailable, instead of a generic 500.
func wrapTemporaryIfNeeded(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNATSError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
