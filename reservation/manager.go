package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

type BookingStore interface {
	Create(ctx context.Context, booking entities.Booking) error
	BookingByID(ctx context.Context, bookingID string) (entities.Booking, error)
	AttachSession(ctx context.Context, bookingID string, sessionID string) error
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]entities.Booking, error)
}

type NewBooking struct {
	Quote        entities.Quote
	Customer     entities.Customer
	Participants []entities.Participant
	AddOns       entities.AddOns
}

type Manager struct {
	bookings   BookingStore
	pendingTTL time.Duration
	now        func() time.Time
}

func NewManager(bookings BookingStore, pendingTTL time.Duration) Manager {
	if bookings == nil {
		panic("bookings is nil")
	}
	return Manager{
		bookings:   bookings,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

func (m Manager) PendingTTL() time.Duration {
	return m.pendingTTL
}

// CreateBooking persists a pending booking. Seats are only taken when payment is confirmed.
func (m Manager) CreateBooking(ctx context.Context, req NewBooking) (entities.Booking, error) {
	customer := entities.Customer{
		Name:  strings.TrimSpace(req.Customer.Name),
		Email: strings.TrimSpace(req.Customer.Email),
		Phone: strings.TrimSpace(req.Customer.Phone),
	}
	if err := customer.Validate(); err != nil {
		return entities.Booking{}, err
	}
	if req.Quote.Quantity < 1 {
		return entities.Booking{}, fmt.Errorf("%w: quantity must be at least 1", entities.ErrValidation)
	}
	if len(req.Participants) > req.Quote.SeatsToReserve {
		return entities.Booking{}, fmt.Errorf(
			"%w: %d participants for %d seats", entities.ErrValidation, len(req.Participants), req.Quote.SeatsToReserve,
		)
	}
	for i, p := range req.Participants {
		if strings.TrimSpace(p.Name) == "" {
			return entities.Booking{}, fmt.Errorf("%w: participant %d has no name", entities.ErrValidation, i+1)
		}
	}

	addOnTotal := req.AddOns.Total()

	booking := entities.Booking{
		BookingID:     uuid.NewString(),
		EventID:       req.Quote.Event.EventID,
		CustomerName:  customer.Name,
		Email:         customer.Email,
		Phone:         customer.Phone,
		Quantity:      req.Quote.Quantity,
		SeatsReserved: req.Quote.SeatsToReserve,
		Price:         req.Quote.TotalBeforeAddOns + addOnTotal,
		AddOnTotal:    addOnTotal,
		Currency:      req.Quote.Currency,
		AddOns:        req.AddOns,
		Participants:  req.Participants,
		Privatized:    req.Quote.Privatized,
		Status:        entities.BookingStatusPending,
	}

	if err := m.bookings.Create(ctx, booking); err != nil {
		return entities.Booking{}, fmt.Errorf("%w: %w", entities.ErrPersistence, err)
	}

	log.FromContext(ctx).
		WithField("booking_id", booking.BookingID).
		WithField("event_id", booking.EventID).
		WithField("seats", booking.SeatsReserved).
		Info("Booking created")

	return booking, nil
}

func (m Manager) AttachSession(ctx context.Context, bookingID string, sessionID string) error {
	return m.bookings.AttachSession(ctx, bookingID, sessionID)
}

func (m Manager) Get(ctx context.Context, bookingID string) (entities.Booking, error) {
	return m.bookings.BookingByID(ctx, bookingID)
}

// ExpireAbandoned expires pending bookings older than the pending TTL.
func (m Manager) ExpireAbandoned(ctx context.Context) ([]entities.Booking, error) {
	expired, err := m.bookings.ExpirePendingBefore(ctx, m.now().Add(-m.pendingTTL))
	if err != nil {
		return nil, fmt.Errorf("could not expire abandoned bookings: %w", err)
	}
	return expired, nil
}
