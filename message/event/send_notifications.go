package event

import (
	"context"
	"fmt"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/notification"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

func (h Handler) SendCustomerConfirmation(ctx context.Context, event *entities.BookingConfirmed_v1) error {
	log.FromContext(ctx).WithField("booking_id", event.Booking.BookingID).Info("Sending booking confirmation to customer")

	email, err := notification.CustomerConfirmation(*event)
	if err != nil {
		return entities.NewPermanentError(err)
	}

	return h.sendEmail(ctx, "customer-confirmation-"+event.Booking.BookingID, email)
}

func (h Handler) NotifyAdminOfBooking(ctx context.Context, event *entities.BookingConfirmed_v1) error {
	log.FromContext(ctx).WithField("booking_id", event.Booking.BookingID).Info("Notifying admin of booking")

	email, err := notification.AdminBooking(h.adminEmail, *event)
	if err != nil {
		return entities.NewPermanentError(err)
	}

	return h.sendEmail(ctx, "admin-booking-"+event.Booking.BookingID, email)
}

func (h Handler) AlertAdminOfOversold(ctx context.Context, event *entities.BookingOversold_v1) error {
	log.FromContext(ctx).
		WithField("booking_id", event.Booking.BookingID).
		WithField("event_id", event.Booking.EventID).
		Error("Booking oversold, refund needed")

	email, err := notification.AdminOversold(h.adminEmail, *event)
	if err != nil {
		return entities.NewPermanentError(err)
	}

	return h.sendEmail(ctx, "admin-oversold-"+event.Booking.BookingID, email)
}

func (h Handler) sendEmail(ctx context.Context, idempotencyKey string, email entities.Email) error {
	err := h.commandBus.Send(ctx, entities.SendNotification{
		Header: entities.NewEventHeaderWithIdempotencyKey(idempotencyKey),
		Email:  email,
	})
	if err != nil {
		return fmt.Errorf("could not send SendNotification command: %w", err)
	}

	return nil
}
