package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

const CancellationReasonOversold = "oversold"

type Participant struct {
	Name        string `json:"name"`
	MedicalInfo string `json:"medicalInfo,omitempty"`
	HeightCm    int    `json:"heightCm,omitempty"`
	WeightKg    int    `json:"weightKg,omitempty"`
}

// Participants keeps participant records in booking order, stored as JSONB.
type Participants []Participant

func (p Participants) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

func (p *Participants) Scan(src any) error {
	return scanJSON(src, p)
}

type AddOn struct {
	RentalItemID string `json:"rental_item_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    Money  `json:"unit_price"`
}

type AddOns []AddOn

func (a AddOns) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

func (a *AddOns) Scan(src any) error {
	return scanJSON(src, a)
}

func (a AddOns) Total() Money {
	var total Money
	for _, addOn := range a {
		total += addOn.UnitPrice.Times(addOn.Quantity)
	}
	return total
}

type AddOnSelection struct {
	RentalItemID string `json:"rentalItemId"`
	Quantity     int    `json:"quantity"`
}

type Customer struct {
	Name  string `json:"customer_name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

var phoneRegexp = regexp.MustCompile(`^\+?[0-9 ().-]{6,20}$`)

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, c.Email)
	}
	if !phoneRegexp.MatchString(strings.TrimSpace(c.Phone)) {
		return fmt.Errorf("%w: invalid phone number %q", ErrValidation, c.Phone)
	}
	return nil
}

type Booking struct {
	BookingID          string        `json:"booking_id" db:"booking_id"`
	EventID            string        `json:"event_id" db:"event_id"`
	CustomerName       string        `json:"customer_name" db:"customer_name"`
	Email              string        `json:"email" db:"email"`
	Phone              string        `json:"phone" db:"phone"`
	Quantity           int           `json:"quantity" db:"quantity"`
	SeatsReserved      int           `json:"seats_reserved" db:"seats_reserved"`
	Price              Money         `json:"price" db:"price"`
	AddOnTotal         Money         `json:"add_on_total" db:"add_on_total"`
	Currency           string        `json:"currency" db:"currency"`
	AddOns             AddOns        `json:"add_ons" db:"add_ons"`
	Participants       Participants  `json:"participants" db:"participants"`
	Privatized         bool          `json:"privatized" db:"privatized"`
	Status             BookingStatus `json:"status" db:"status"`
	CheckoutSessionID  *string       `json:"checkout_session_id,omitempty" db:"checkout_session_id"`
	PaymentRef         *string       `json:"payment_ref,omitempty" db:"payment_ref"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
}

func (b Booking) Customer() Customer {
	return Customer{Name: b.CustomerName, Email: b.Email, Phone: b.Phone}
}
