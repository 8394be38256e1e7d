package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	metadataBookingID = "booking_id"
	metadataEventID   = "event_id"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type StripePaymentsClient struct {
	// we are not mocking this client: tests use PaymentGatewayMock instead
	client        *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripePaymentsClient(cfg StripeConfig, httpClient *http.Client) StripePaymentsClient {
	if cfg.SecretKey == "" {
		panic("NewStripePaymentsClient: secret key is empty")
	}
	if cfg.WebhookSecret == "" {
		panic("NewStripePaymentsClient: webhook secret is empty")
	}

	backends := stripe.NewBackends(httpClient)

	return StripePaymentsClient{
		client:        client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (c StripePaymentsClient) CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (entities.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.BookingID),
		SuccessURL:        stripe.String(withBookingID(c.successURL, req.BookingID)),
		CancelURL:         stripe.String(withBookingID(c.cancelURL, req.BookingID)),
		ExpiresAt:         stripe.Int64(req.ExpiresAt.Unix()),
		LineItems: lo.Map(req.LineItems, func(item entities.LineItem, _ int) *stripe.CheckoutSessionLineItemParams {
			return &stripe.CheckoutSessionLineItemParams{
				Quantity: stripe.Int64(int64(item.Quantity)),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(int64(item.UnitPrice)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(item.Name),
					},
				},
			}
		}),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				metadataBookingID: req.BookingID,
				metadataEventID:   req.EventID,
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataBookingID, req.BookingID)
	params.AddMetadata(metadataEventID, req.EventID)
	params.SetIdempotencyKey(req.IdempotencyKey)

	session, err := c.client.CheckoutSessions.New(params)
	if err != nil {
		return entities.CheckoutSession{}, fmt.Errorf("%w: could not create checkout session for booking %s: %w", entities.ErrGateway, req.BookingID, err)
	}

	return entities.CheckoutSession{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

// VerifyWebhook checks the signature before anything in the payload is trusted.
func (c StripePaymentsClient) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (entities.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return entities.PaymentEvent{}, fmt.Errorf("%w: %w", entities.ErrInvalidSignature, err)
	}

	paymentEvent := entities.PaymentEvent{
		ID:   event.ID,
		Type: entities.PaymentEventType(event.Type),
	}

	if !isCheckoutSessionEvent(paymentEvent.Type) {
		return paymentEvent, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		// Not a signature problem: the delivery must fail so the gateway retries it.
		return entities.PaymentEvent{}, fmt.Errorf("could not decode checkout session of event %s: %w", event.ID, err)
	}

	paymentEvent.SessionID = session.ID
	paymentEvent.PaymentStatus = string(session.PaymentStatus)
	paymentEvent.Metadata = session.Metadata
	if session.PaymentIntent != nil {
		paymentEvent.PaymentRef = session.PaymentIntent.ID
	}
	if paymentEvent.Metadata == nil {
		paymentEvent.Metadata = map[string]string{}
	}
	if _, ok := paymentEvent.Metadata[metadataBookingID]; !ok && session.ClientReferenceID != "" {
		paymentEvent.Metadata[metadataBookingID] = session.ClientReferenceID
	}

	return paymentEvent, nil
}

func isCheckoutSessionEvent(t entities.PaymentEventType) bool {
	switch t {
	case entities.PaymentEventCheckoutCompleted,
		entities.PaymentEventAsyncPaymentSucceeded,
		entities.PaymentEventCheckoutSessionExpired:
		return true
	}
	return false
}

func withBookingID(url string, bookingID string) string {
	return strings.ReplaceAll(url, "{BOOKING_ID}", bookingID)
}
