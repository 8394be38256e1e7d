package confirmation

import (
	"context"
	"errors"
	"fmt"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/metrics"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

type WebhookVerifier interface {
	VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (entities.PaymentEvent, error)
}

type Confirmer interface {
	ConfirmPaid(ctx context.Context, bookingID string, paymentRef string) (entities.Confirmation, error)
	Expire(ctx context.Context, bookingID string) (bool, error)
}

// Handler applies verified payment notifications to bookings.
type Handler struct {
	verifier  WebhookVerifier
	confirmer Confirmer
}

func NewHandler(verifier WebhookVerifier, confirmer Confirmer) Handler {
	if verifier == nil {
		panic("verifier is nil")
	}
	if confirmer == nil {
		panic("confirmer is nil")
	}

	return Handler{
		verifier:  verifier,
		confirmer: confirmer,
	}
}

// HandleWebhook returns an error only when the delivery should be rejected (bad signature)
// or redelivered by the gateway (storage failure). Everything else is acknowledged.
func (h Handler) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (confirmation entities.Confirmation, err error) {
	defer func() {
		metrics.WebhookEventsTotal.WithLabelValues(webhookOutcomeLabel(confirmation, err)).Inc()
	}()

	logger := log.FromContext(ctx)

	event, err := h.verifier.VerifyWebhook(ctx, payload, signatureHeader)
	if errors.Is(err, entities.ErrInvalidSignature) {
		logger.WithError(err).Warn("Rejected payment webhook with invalid signature")
		return entities.Confirmation{}, err
	}
	if err != nil {
		logger.WithError(err).Error("Could not read verified payment webhook")
		return entities.Confirmation{}, err
	}

	logger = logger.WithField("stripe_event_id", event.ID).WithField("stripe_event_type", event.Type)

	ignored := entities.Confirmation{Outcome: entities.ConfirmationOutcomeIgnored}

	switch event.Type {
	case entities.PaymentEventCheckoutCompleted:
		if !event.IsPaid() {
			// Delayed payment methods complete the session first and send async_payment_succeeded later.
			logger.WithField("payment_status", event.PaymentStatus).Info("Checkout completed without payment, waiting")
			return ignored, nil
		}
	case entities.PaymentEventAsyncPaymentSucceeded, entities.PaymentEventCheckoutSessionExpired:
	default:
		logger.Debug("Ignoring payment webhook")
		return ignored, nil
	}

	bookingID := event.Metadata["booking_id"]
	if bookingID == "" {
		logger.WithField("session_id", event.SessionID).Error("Payment webhook has no booking id, acknowledging")
		return ignored, nil
	}
	ignored.BookingID = bookingID
	logger = logger.WithField("booking_id", bookingID)

	if event.Type == entities.PaymentEventCheckoutSessionExpired {
		return h.expire(ctx, bookingID)
	}

	confirmation, err = h.confirmer.ConfirmPaid(ctx, bookingID, event.PaymentRef)
	if errors.Is(err, entities.ErrBookingNotFound) {
		logger.Error("Payment received for unknown booking, acknowledging")
		return ignored, nil
	}
	if err != nil {
		return entities.Confirmation{}, fmt.Errorf("could not confirm booking %s: %w", bookingID, err)
	}

	switch confirmation.Outcome {
	case entities.ConfirmationOutcomeConfirmed:
		metrics.SeatsConfirmedTotal.Inc()
		logger.WithField("seats_remaining", confirmation.SeatsRemaining).Info("Booking confirmed")
	case entities.ConfirmationOutcomeOversold:
		logger.Error("Payment received but event is sold out, booking flagged for refund")
	default:
		logger.WithField("outcome", confirmation.Outcome).Info("Payment webhook replayed")
	}

	return confirmation, nil
}

func (h Handler) expire(ctx context.Context, bookingID string) (entities.Confirmation, error) {
	expired, err := h.confirmer.Expire(ctx, bookingID)
	if err != nil {
		return entities.Confirmation{}, fmt.Errorf("could not expire booking %s: %w", bookingID, err)
	}

	if !expired {
		return entities.Confirmation{Outcome: entities.ConfirmationOutcomeNotPending, BookingID: bookingID}, nil
	}

	metrics.BookingsExpiredTotal.Inc()
	log.FromContext(ctx).WithField("booking_id", bookingID).Info("Booking expired by payment gateway")

	return entities.Confirmation{Outcome: entities.ConfirmationOutcomeExpired, BookingID: bookingID}, nil
}

func webhookOutcomeLabel(confirmation entities.Confirmation, err error) string {
	switch {
	case errors.Is(err, entities.ErrInvalidSignature):
		return "invalid_signature"
	case err != nil:
		return "error"
	default:
		return string(confirmation.Outcome)
	}
}
