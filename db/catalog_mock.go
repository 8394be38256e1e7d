package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/samber/lo"
)

// CatalogMock is an in-memory stand-in for the event, activity and booking repositories.
// Its mutex plays the role of the row locks taken by the SQL implementation.
type CatalogMock struct {
	lock sync.Mutex

	events      map[string]entities.Event
	rentalItems map[string]entities.RentalItem
	bookings    map[string]entities.Booking
	published   []any

	CreateBookingErr error
	AttachErr        error
}

func NewCatalogMock() *CatalogMock {
	return &CatalogMock{
		events:      map[string]entities.Event{},
		rentalItems: map[string]entities.RentalItem{},
		bookings:    map[string]entities.Booking{},
	}
}

func (m *CatalogMock) AddEvent(event entities.Event) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if event.Status == "" {
		event.Status = entities.EventStatusAvailable
	}
	m.events[event.EventID] = event
}

func (m *CatalogMock) AddRentalItem(item entities.RentalItem) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.rentalItems[item.RentalItemID] = item
}

func (m *CatalogMock) Get(ctx context.Context, eventID string) (entities.Event, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return entities.Event{}, fmt.Errorf("%w: %s", entities.ErrEventNotFound, eventID)
	}
	return event, nil
}

func (m *CatalogMock) RentalItemsByIDs(ctx context.Context, activityID string, ids []string) ([]entities.RentalItem, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var items []entities.RentalItem
	for _, id := range ids {
		item, ok := m.rentalItems[id]
		if ok && item.ActivityID == activityID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *CatalogMock) Create(ctx context.Context, booking entities.Booking) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.CreateBookingErr != nil {
		return m.CreateBookingErr
	}
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *CatalogMock) BookingByID(ctx context.Context, bookingID string) (entities.Booking, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	booking, ok := m.bookings[bookingID]
	if !ok {
		return entities.Booking{}, fmt.Errorf("%w: %s", entities.ErrBookingNotFound, bookingID)
	}
	return booking, nil
}

func (m *CatalogMock) Bookings() []entities.Booking {
	m.lock.Lock()
	defer m.lock.Unlock()

	return lo.Values(m.bookings)
}

func (m *CatalogMock) Published() []any {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]any(nil), m.published...)
}

func (m *CatalogMock) AttachSession(ctx context.Context, bookingID string, sessionID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.AttachErr != nil {
		return m.AttachErr
	}

	booking, ok := m.bookings[bookingID]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrBookingNotFound, bookingID)
	}
	if booking.Status != entities.BookingStatusPending {
		return fmt.Errorf("%w: %s", entities.ErrBookingNotPending, bookingID)
	}

	booking.CheckoutSessionID = lo.ToPtr(sessionID)
	m.bookings[bookingID] = booking
	return nil
}

func (m *CatalogMock) ConfirmPaid(ctx context.Context, bookingID string, paymentRef string) (entities.Confirmation, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	booking, ok := m.bookings[bookingID]
	if !ok {
		return entities.Confirmation{}, fmt.Errorf("%w: %s", entities.ErrBookingNotFound, bookingID)
	}
	switch booking.Status {
	case entities.BookingStatusConfirmed:
		return entities.Confirmation{Outcome: entities.ConfirmationOutcomeAlreadyConfirmed, BookingID: bookingID}, nil
	case entities.BookingStatusCancelled:
		return entities.Confirmation{Outcome: entities.ConfirmationOutcomeNotPending, BookingID: bookingID}, nil
	}

	event := m.events[booking.EventID]
	booking.PaymentRef = lo.ToPtr(paymentRef)

	remaining := event.RemainingSeats()
	if event.Status == entities.EventStatusCancelled || remaining < booking.SeatsReserved {
		booking.Status = entities.BookingStatusCancelled
		booking.CancellationReason = lo.ToPtr(entities.CancellationReasonOversold)
		m.bookings[bookingID] = booking
		m.published = append(m.published, entities.BookingOversold_v1{
			Header:         entities.NewEventHeaderWithIdempotencyKey("oversold-" + bookingID),
			Booking:        entities.NewBookingSnapshot(booking, event),
			PaymentRef:     paymentRef,
			SeatsAvailable: remaining,
		})
		return entities.Confirmation{Outcome: entities.ConfirmationOutcomeOversold, BookingID: bookingID, EventID: event.EventID}, nil
	}

	remaining -= booking.SeatsReserved
	event.SeatsAvailable = lo.ToPtr(remaining)
	event.BookedCount += booking.SeatsReserved
	if remaining == 0 {
		event.Status = entities.EventStatusFull
	}
	m.events[event.EventID] = event

	booking.Status = entities.BookingStatusConfirmed
	booking.ConfirmedAt = lo.ToPtr(time.Now().UTC())
	m.bookings[bookingID] = booking
	m.published = append(m.published, entities.BookingConfirmed_v1{
		Header:         entities.NewEventHeaderWithIdempotencyKey("confirmed-" + bookingID),
		Booking:        entities.NewBookingSnapshot(booking, event),
		PaymentRef:     paymentRef,
		SeatsRemaining: remaining,
	})

	return entities.Confirmation{
		Outcome:        entities.ConfirmationOutcomeConfirmed,
		BookingID:      bookingID,
		EventID:        event.EventID,
		SeatsRemaining: lo.ToPtr(remaining),
	}, nil
}

func (m *CatalogMock) Expire(ctx context.Context, bookingID string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	booking, ok := m.bookings[bookingID]
	if !ok || booking.Status != entities.BookingStatusPending {
		return false, nil
	}
	m.expireLocked(booking)
	return true, nil
}

func (m *CatalogMock) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]entities.Booking, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var expired []entities.Booking
	for _, booking := range m.bookings {
		if booking.Status == entities.BookingStatusPending && booking.CreatedAt.Before(deadline) {
			expired = append(expired, m.expireLocked(booking))
		}
	}
	return expired, nil
}

func (m *CatalogMock) expireLocked(booking entities.Booking) entities.Booking {
	booking.Status = entities.BookingStatusExpired
	m.bookings[booking.BookingID] = booking
	m.published = append(m.published, entities.BookingExpired_v1{
		Header:    entities.NewEventHeaderWithIdempotencyKey("expired-" + booking.BookingID),
		BookingID: booking.BookingID,
		EventID:   booking.EventID,
	})
	return booking
}
