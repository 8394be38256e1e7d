package event

import (
	"context"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

func (h Handler) InvalidateListingOnConfirmation(ctx context.Context, event *entities.BookingConfirmed_v1) error {
	return h.listingCache.InvalidateEvent(ctx, event.Booking.EventID)
}

func (h Handler) InvalidateListingOnCatalogUpdate(ctx context.Context, event *entities.EventCatalogUpdated_v1) error {
	return h.listingCache.InvalidateEvent(ctx, event.EventID)
}
