package http

import (
	"context"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

type Handler struct {
	checkout     CheckoutService
	webhooks     WebhookHandler
	events       EventRepository
	activities   ActivityRepository
	bookings     BookingRepository
	listingCache ListingCache
	eventBus     EventBus
	now          func() time.Time
}

type CheckoutService interface {
	Initiate(ctx context.Context, req entities.CheckoutRequest) (entities.CheckoutResponse, error)
}

type WebhookHandler interface {
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (entities.Confirmation, error)
}

type EventRepository interface {
	Create(ctx context.Context, event entities.Event) error
	Get(ctx context.Context, eventID string) (entities.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]entities.Event, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity entities.Activity) error
	Get(ctx context.Context, activityID string) (entities.Activity, error)
}

type BookingRepository interface {
	BookingByID(ctx context.Context, bookingID string) (entities.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]entities.Booking, error)
}

type ListingCache interface {
	Upcoming(ctx context.Context) ([]entities.Event, bool, error)
	SetUpcoming(ctx context.Context, events []entities.Event) error
	Event(ctx context.Context, eventID string) (entities.Event, bool, error)
	SetEvent(ctx context.Context, event entities.Event) error
}

type EventBus interface {
	Publish(ctx context.Context, event any) error
}
