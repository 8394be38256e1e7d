package event

import (
	"context"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

func (h Handler) AuditBookingConfirmed(ctx context.Context, event *entities.BookingConfirmed_v1) error {
	return h.auditLog.Append(ctx, event.Header, "BookingConfirmed_v1", event)
}

func (h Handler) AuditBookingOversold(ctx context.Context, event *entities.BookingOversold_v1) error {
	return h.auditLog.Append(ctx, event.Header, "BookingOversold_v1", event)
}

func (h Handler) AuditBookingExpired(ctx context.Context, event *entities.BookingExpired_v1) error {
	return h.auditLog.Append(ctx, event.Header, "BookingExpired_v1", event)
}
