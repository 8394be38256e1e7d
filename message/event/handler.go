package event

import (
	"context"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

type CommandBus interface {
	Send(ctx context.Context, command any) error
}

type ListingCache interface {
	InvalidateEvent(ctx context.Context, eventID string) error
}

type AuditLog interface {
	Append(ctx context.Context, header entities.EventHeader, eventName string, event any) error
}

type Handler struct {
	commandBus   CommandBus
	listingCache ListingCache
	auditLog     AuditLog
	adminEmail   string
}

func NewHandler(commandBus CommandBus, listingCache ListingCache, auditLog AuditLog, adminEmail string) Handler {
	if commandBus == nil {
		panic("missing commandBus")
	}
	if listingCache == nil {
		panic("missing listingCache")
	}
	if auditLog == nil {
		panic("missing auditLog")
	}
	if adminEmail == "" {
		panic("missing adminEmail")
	}

	return Handler{
		commandBus:   commandBus,
		listingCache: listingCache,
		auditLog:     auditLog,
		adminEmail:   adminEmail,
	}
}
