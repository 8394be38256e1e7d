package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type EventStatus string

const (
	EventStatusAvailable EventStatus = "available"
	EventStatusFull      EventStatus = "full"
	EventStatusCancelled EventStatus = "cancelled"
)

type Discount struct {
	MinParticipants    int `json:"min_participants"`
	DiscountPercentage int `json:"discount_percentage"`
}

// Discounts is stored as a JSONB column.
type Discounts []Discount

func (d Discounts) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *Discounts) Scan(src any) error {
	return scanJSON(src, d)
}

// Best returns the percentage of the highest threshold met by quantity.
// Thresholds do not stack.
func (d Discounts) Best(quantity int) int {
	best := Discount{}
	for _, discount := range d {
		if quantity >= discount.MinParticipants && discount.MinParticipants >= best.MinParticipants {
			best = discount
		}
	}
	return best.DiscountPercentage
}

type Event struct {
	EventID            string      `json:"event_id" db:"event_id"`
	ActivityID         string      `json:"activity_id" db:"activity_id"`
	Title              string      `json:"title" db:"title"`
	Location           string      `json:"location" db:"location"`
	StartsAt           time.Time   `json:"starts_at" db:"starts_at"`
	DurationMinutes    int         `json:"duration_minutes" db:"duration_minutes"`
	Price              *Money      `json:"price" db:"price"`
	Currency           string      `json:"currency" db:"currency"`
	MaxParticipants    int         `json:"max_participants" db:"max_participants"`
	SeatsAvailable     *int        `json:"seats_available" db:"seats_available"`
	BookedCount        int         `json:"booked_count" db:"booked_count"`
	Status             EventStatus `json:"status" db:"status"`
	PrivatizationPrice *Money      `json:"privatization_price" db:"privatization_price"`
	Discounts          Discounts   `json:"discounts" db:"discounts"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// RemainingSeats falls back to maxParticipants - bookedCount when seatsAvailable was never set.
func (e Event) RemainingSeats() int {
	if e.SeatsAvailable != nil {
		return *e.SeatsAvailable
	}
	return e.MaxParticipants - e.BookedCount
}

func (e Event) Validate() error {
	if e.ActivityID == "" {
		return fmt.Errorf("%w: activity_id is required", ErrValidation)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if e.StartsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", ErrValidation)
	}
	if e.MaxParticipants < 1 {
		return fmt.Errorf("%w: max_participants must be greater than 0", ErrValidation)
	}
	if e.SeatsAvailable != nil && (*e.SeatsAvailable < 0 || *e.SeatsAvailable > e.MaxParticipants) {
		return fmt.Errorf("%w: seats_available must be between 0 and max_participants", ErrValidation)
	}
	for _, d := range e.Discounts {
		if d.MinParticipants < 1 || d.DiscountPercentage < 0 || d.DiscountPercentage > 100 {
			return fmt.Errorf("%w: invalid discount %+v", ErrValidation, d)
		}
	}
	return nil
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for json column", src)
	}

	return json.Unmarshal(data, dst)
}

// SeatDrift reports an event whose seat counters disagree.
type SeatDrift struct {
	EventID         string `json:"event_id" db:"event_id"`
	Title           string `json:"title" db:"title"`
	MaxParticipants int    `json:"max_participants" db:"max_participants"`
	SeatsAvailable  *int   `json:"seats_available" db:"seats_available"`
	BookedCount     int    `json:"booked_count" db:"booked_count"`
	ConfirmedSeats  int    `json:"confirmed_seats" db:"confirmed_seats"`
}
