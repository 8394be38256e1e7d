package entities

import "time"

type CheckoutRequest struct {
	EventID      string           `json:"eventId"`
	Quantity     int              `json:"quantity"`
	CustomerName string           `json:"customerName"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	Privatize    bool             `json:"privatize"`
	Rentals      []AddOnSelection `json:"rentals"`
	Participants []Participant    `json:"participants"`
	// Price is accepted for compatibility with older clients and never read.
	Price *float64 `json:"price,omitempty"`
}

type CheckoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
	BookingID   string `json:"bookingId"`
}

type LineItem struct {
	Name      string
	UnitPrice Money
	Quantity  int
}

type CheckoutSessionRequest struct {
	BookingID     string
	EventID       string
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	ExpiresAt     time.Time
	// IdempotencyKey makes a retried session creation return the same session.
	IdempotencyKey string
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

type PaymentEventType string

const (
	PaymentEventCheckoutCompleted      PaymentEventType = "checkout.session.completed"
	PaymentEventAsyncPaymentSucceeded  PaymentEventType = "checkout.session.async_payment_succeeded"
	PaymentEventCheckoutSessionExpired PaymentEventType = "checkout.session.expired"
)

// PaymentEvent is a webhook notification whose signature has been verified.
type PaymentEvent struct {
	ID            string
	Type          PaymentEventType
	SessionID     string
	PaymentStatus string
	PaymentRef    string
	Metadata      map[string]string
}

func (p PaymentEvent) IsPaid() bool {
	return p.PaymentStatus == "paid"
}

type ConfirmationOutcome string

const (
	ConfirmationOutcomeConfirmed        ConfirmationOutcome = "confirmed"
	ConfirmationOutcomeAlreadyConfirmed ConfirmationOutcome = "already_confirmed"
	ConfirmationOutcomeNotPending       ConfirmationOutcome = "not_pending"
	ConfirmationOutcomeOversold         ConfirmationOutcome = "oversold"
	ConfirmationOutcomeExpired          ConfirmationOutcome = "expired"
	ConfirmationOutcomeIgnored          ConfirmationOutcome = "ignored"
)

type Confirmation struct {
	Outcome   ConfirmationOutcome
	BookingID string
	EventID   string
	// SeatsRemaining is set when the decrement was applied.
	SeatsRemaining *int
}
