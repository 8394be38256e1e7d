package command

import (
	"context"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

type Notifier interface {
	Send(ctx context.Context, email entities.Email) error
}

// Deduplicator remembers idempotency keys that were already handled.
type Deduplicator interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Handler struct {
	notifier     Notifier
	deduplicator Deduplicator
}

func NewHandler(notifier Notifier, deduplicator Deduplicator) Handler {
	if notifier == nil {
		panic("notifier is required")
	}
	if deduplicator == nil {
		panic("deduplicator is required")
	}

	return Handler{
		notifier:     notifier,
		deduplicator: deduplicator,
	}
}
