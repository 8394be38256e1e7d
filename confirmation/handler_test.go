package confirmation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/api"
	"github.com/facenordgraphisme/test-mon-coach-sub000/confirmation"
	"github.com/facenordgraphisme/test-mon-coach-sub000/db"
	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const webhookSecret = "whsec_test_secret"

func newHandler(catalog *db.CatalogMock) confirmation.Handler {
	stripe := api.NewStripePaymentsClient(api.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: webhookSecret,
	}, nil)

	return confirmation.NewHandler(stripe, catalog)
}

func newCatalog(seats int) *db.CatalogMock {
	catalog := db.NewCatalogMock()
	catalog.AddEvent(entities.Event{
		EventID:         "e1",
		Title:           "Canyoning",
		Price:           lo.ToPtr(entities.Money(4500)),
		Currency:        "eur",
		MaxParticipants: 8,
		SeatsAvailable:  lo.ToPtr(seats),
		BookedCount:     8 - seats,
	})
	return catalog
}

func addPendingBooking(t *testing.T, catalog *db.CatalogMock, bookingID string, seats int) {
	t.Helper()

	err := catalog.Create(context.Background(), entities.Booking{
		BookingID:     bookingID,
		EventID:       "e1",
		CustomerName:  "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "0612345678",
		Quantity:      seats,
		SeatsReserved: seats,
		Price:         entities.Money(4500).Times(seats),
		Currency:      "eur",
		Status:        entities.BookingStatusPending,
	})
	require.NoError(t, err)
}

func sessionEvent(eventType entities.PaymentEventType, paymentStatus string, metadata map[string]string) map[string]any {
	return map[string]any{
		"id":          "evt_" + metadata["booking_id"],
		"object":      "event",
		"type":        string(eventType),
		"api_version": "2023-10-16",
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_test_" + metadata["booking_id"],
				"object":         "checkout.session",
				"payment_status": paymentStatus,
				"payment_intent": "pi_" + metadata["booking_id"],
				"metadata":       metadata,
			},
		},
	}
}

func paidEvent(bookingID string) map[string]any {
	return sessionEvent(entities.PaymentEventCheckoutCompleted, "paid", map[string]string{
		"booking_id": bookingID,
		"event_id":   "e1",
	})
}

func sign(t *testing.T, payload map[string]any, secret string) ([]byte, string) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func seatsLeft(t *testing.T, catalog *db.CatalogMock) int {
	t.Helper()

	event, err := catalog.Get(context.Background(), "e1")
	require.NoError(t, err)
	return event.RemainingSeats()
}

func bookingStatus(t *testing.T, catalog *db.CatalogMock, bookingID string) entities.BookingStatus {
	t.Helper()

	booking, err := catalog.BookingByID(context.Background(), bookingID)
	require.NoError(t, err)
	return booking.Status
}

func TestHandleWebhook_confirms_paid_booking(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 2)

	payload, header := sign(t, paidEvent("b1"), webhookSecret)

	result, err := newHandler(catalog).HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)

	assert.Equal(t, entities.ConfirmationOutcomeConfirmed, result.Outcome)
	require.NotNil(t, result.SeatsRemaining)
	assert.Equal(t, 3, *result.SeatsRemaining)
	assert.Equal(t, 3, seatsLeft(t, catalog))

	booking, err := catalog.BookingByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.PaymentRef)
	assert.Equal(t, "pi_b1", *booking.PaymentRef)

	published := catalog.Published()
	require.Len(t, published, 1)
	confirmed, ok := published[0].(entities.BookingConfirmed_v1)
	require.True(t, ok)
	assert.Equal(t, "confirmed-b1", confirmed.Header.IdempotencyKey)
}

func TestHandleWebhook_invalid_signature_changes_nothing(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 2)

	payload, header := sign(t, paidEvent("b1"), "whsec_attacker")

	_, err := newHandler(catalog).HandleWebhook(context.Background(), payload, header)
	assert.ErrorIs(t, err, entities.ErrInvalidSignature)

	assert.Equal(t, entities.BookingStatusPending, bookingStatus(t, catalog, "b1"))
	assert.Equal(t, 5, seatsLeft(t, catalog))
	assert.Empty(t, catalog.Published())
}

func TestHandleWebhook_missing_signature(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 2)

	payload, _ := sign(t, paidEvent("b1"), webhookSecret)

	_, err := newHandler(catalog).HandleWebhook(context.Background(), payload, "")
	assert.ErrorIs(t, err, entities.ErrInvalidSignature)
	assert.Equal(t, entities.BookingStatusPending, bookingStatus(t, catalog, "b1"))
}

func TestHandleWebhook_duplicate_delivery(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 2)
	handler := newHandler(catalog)

	payload, header := sign(t, paidEvent("b1"), webhookSecret)

	first, err := handler.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeConfirmed, first.Outcome)

	second, err := handler.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeAlreadyConfirmed, second.Outcome)

	assert.Equal(t, 3, seatsLeft(t, catalog))
	assert.Len(t, catalog.Published(), 1)
}

func TestHandleWebhook_ignored_events(t *testing.T) {
	testCases := []struct {
		Name    string
		Payload map[string]any
	}{
		{
			Name: "unrelated_type",
			Payload: map[string]any{
				"id":          "evt_1",
				"object":      "event",
				"type":        "customer.created",
				"api_version": "2023-10-16",
				"data":        map[string]any{"object": map[string]any{"id": "cus_1", "object": "customer"}},
			},
		},
		{
			Name: "completed_but_unpaid",
			Payload: sessionEvent(entities.PaymentEventCheckoutCompleted, "unpaid", map[string]string{
				"booking_id": "b1",
			}),
		},
		{
			Name:    "no_booking_id",
			Payload: sessionEvent(entities.PaymentEventCheckoutCompleted, "paid", map[string]string{}),
		},
		{
			Name:    "unknown_booking",
			Payload: paidEvent("does-not-exist"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			catalog := newCatalog(5)
			addPendingBooking(t, catalog, "b1", 2)

			payload, header := sign(t, tc.Payload, webhookSecret)

			result, err := newHandler(catalog).HandleWebhook(context.Background(), payload, header)
			require.NoError(t, err)
			assert.Equal(t, entities.ConfirmationOutcomeIgnored, result.Outcome)

			assert.Equal(t, entities.BookingStatusPending, bookingStatus(t, catalog, "b1"))
			assert.Equal(t, 5, seatsLeft(t, catalog))
			assert.Empty(t, catalog.Published())
		})
	}
}

func TestHandleWebhook_async_payment_succeeded(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 1)

	payload, header := sign(t, sessionEvent(entities.PaymentEventAsyncPaymentSucceeded, "paid", map[string]string{
		"booking_id": "b1",
	}), webhookSecret)

	result, err := newHandler(catalog).HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeConfirmed, result.Outcome)
	assert.Equal(t, 4, seatsLeft(t, catalog))
}

func TestHandleWebhook_session_expired(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 2)
	handler := newHandler(catalog)

	payload, header := sign(t, sessionEvent(entities.PaymentEventCheckoutSessionExpired, "unpaid", map[string]string{
		"booking_id": "b1",
	}), webhookSecret)

	result, err := handler.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeExpired, result.Outcome)
	assert.Equal(t, entities.BookingStatusExpired, bookingStatus(t, catalog, "b1"))
	assert.Equal(t, 5, seatsLeft(t, catalog))

	result, err = handler.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeNotPending, result.Outcome)
}

func TestHandleWebhook_oversold(t *testing.T) {
	catalog := newCatalog(1)
	addPendingBooking(t, catalog, "b1", 2)

	payload, header := sign(t, paidEvent("b1"), webhookSecret)

	result, err := newHandler(catalog).HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeOversold, result.Outcome)

	booking, err := catalog.BookingByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusCancelled, booking.Status)
	require.NotNil(t, booking.CancellationReason)
	assert.Equal(t, entities.CancellationReasonOversold, *booking.CancellationReason)
	assert.Equal(t, 1, seatsLeft(t, catalog))

	published := catalog.Published()
	require.Len(t, published, 1)
	assert.IsType(t, entities.BookingOversold_v1{}, published[0])
}

func TestHandleWebhook_concurrent_confirmations_never_oversell(t *testing.T) {
	const seats = 3

	catalog := newCatalog(seats)
	handler := newHandler(catalog)

	var payloads [][]byte
	var headers []string
	for i := 0; i < seats+1; i++ {
		bookingID := fmt.Sprintf("b%d", i)
		addPendingBooking(t, catalog, bookingID, 1)

		payload, header := sign(t, paidEvent(bookingID), webhookSecret)
		payloads = append(payloads, payload)
		headers = append(headers, header)
	}

	results := make([]entities.Confirmation, len(payloads))
	wg := sync.WaitGroup{}
	for i := range payloads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := handler.HandleWebhook(context.Background(), payloads[i], headers[i])
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	outcomes := map[entities.ConfirmationOutcome]int{}
	for _, result := range results {
		outcomes[result.Outcome]++
	}
	assert.Equal(t, seats, outcomes[entities.ConfirmationOutcomeConfirmed])
	assert.Equal(t, 1, outcomes[entities.ConfirmationOutcomeOversold])
	assert.Equal(t, 0, seatsLeft(t, catalog))
}

func TestHandleWebhook_last_seat_then_replay(t *testing.T) {
	catalog := newCatalog(1)
	addPendingBooking(t, catalog, "b1", 1)
	handler := newHandler(catalog)

	payload, header := sign(t, paidEvent("b1"), webhookSecret)

	result, err := handler.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeConfirmed, result.Outcome)
	assert.Equal(t, 0, seatsLeft(t, catalog))

	event, err := catalog.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, entities.EventStatusFull, event.Status)

	result, err = handler.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeAlreadyConfirmed, result.Outcome)
	assert.Equal(t, 0, seatsLeft(t, catalog))
	assert.Len(t, catalog.Published(), 1)
}

func TestHandleWebhook_late_payment_for_expired_booking(t *testing.T) {
	catalog := newCatalog(5)
	addPendingBooking(t, catalog, "b1", 2)

	expired, err := catalog.Expire(context.Background(), "b1")
	require.NoError(t, err)
	require.True(t, expired)

	payload, header := sign(t, paidEvent("b1"), webhookSecret)

	result, err := newHandler(catalog).HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, entities.ConfirmationOutcomeConfirmed, result.Outcome)
	assert.Equal(t, 3, seatsLeft(t, catalog))
}

func TestHandleWebhook_undecodable_session_is_redelivered(t *testing.T) {
	catalog := newCatalog(4)
	addPendingBooking(t, catalog, "b1", 1)
	handler := newHandler(catalog)

	event := paidEvent("b1")
	event["data"].(map[string]any)["object"].(map[string]any)["metadata"] = "not-an-object"
	payload, header := sign(t, event, webhookSecret)

	_, err := handler.HandleWebhook(context.Background(), payload, header)
	require.Error(t, err)
	assert.NotErrorIs(t, err, entities.ErrInvalidSignature)

	booking, err := catalog.BookingByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusPending, booking.Status)
	assert.Equal(t, 4, seatsLeft(t, catalog))
}
