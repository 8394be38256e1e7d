package entities

import (
	"time"

	"github.com/google/uuid"
)

type IEvent interface {
	IsInternal() bool
}

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: uuid.NewString(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// BookingSnapshot carries what notification handlers need without reading the database.
type BookingSnapshot struct {
	BookingID    string       `json:"booking_id"`
	EventID      string       `json:"event_id"`
	EventTitle   string       `json:"event_title"`
	EventStarts  time.Time    `json:"event_starts_at"`
	Location     string       `json:"location"`
	CustomerName string       `json:"customer_name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Quantity     int          `json:"quantity"`
	Seats        int          `json:"seats"`
	Privatized   bool         `json:"privatized"`
	Price        Money        `json:"price"`
	Currency     string       `json:"currency"`
	AddOns       AddOns       `json:"add_ons"`
	Participants Participants `json:"participants"`
}

type BookingConfirmed_v1 struct {
	Header EventHeader `json:"header"`

	Booking        BookingSnapshot `json:"booking"`
	PaymentRef     string          `json:"payment_ref"`
	SeatsRemaining int             `json:"seats_remaining"`
}

func (e BookingConfirmed_v1) IsInternal() bool {
	return false
}

// BookingOversold_v1 is published when a payment completed but the seats were already gone.
type BookingOversold_v1 struct {
	Header EventHeader `json:"header"`

	Booking        BookingSnapshot `json:"booking"`
	PaymentRef     string          `json:"payment_ref"`
	SeatsAvailable int             `json:"seats_available"`
}

func (e BookingOversold_v1) IsInternal() bool {
	return false
}

type BookingExpired_v1 struct {
	Header EventHeader `json:"header"`

	BookingID string `json:"booking_id"`
	EventID   string `json:"event_id"`
}

func (e BookingExpired_v1) IsInternal() bool {
	return false
}

type EventCatalogUpdated_v1 struct {
	Header EventHeader `json:"header"`

	EventID string `json:"event_id"`
}

func (e EventCatalogUpdated_v1) IsInternal() bool {
	return true
}

type AuditEntry struct {
	EventID      string    `json:"event_id" db:"event_id"`
	PublishedAt  time.Time `json:"published_at" db:"published_at"`
	EventName    string    `json:"event_name" db:"event_name"`
	EventPayload []byte    `json:"event_payload" db:"event_payload"`
}

func NewBookingSnapshot(booking Booking, event Event) BookingSnapshot {
	return BookingSnapshot{
		BookingID:    booking.BookingID,
		EventID:      booking.EventID,
		EventTitle:   event.Title,
		EventStarts:  event.StartsAt,
		Location:     event.Location,
		CustomerName: booking.CustomerName,
		Email:        booking.Email,
		Phone:        booking.Phone,
		Quantity:     booking.Quantity,
		Seats:        booking.SeatsReserved,
		Privatized:   booking.Privatized,
		Price:        booking.Price,
		Currency:     booking.Currency,
		AddOns:       booking.AddOns,
		Participants: booking.Participants,
	}
}
