package event_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commandBusMock struct {
	lock     sync.Mutex
	commands []entities.SendNotification
	err      error
}

func (m *commandBusMock) Send(ctx context.Context, command any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.err != nil {
		return m.err
	}
	m.commands = append(m.commands, command.(entities.SendNotification))
	return nil
}

type listingCacheMock struct {
	lock        sync.Mutex
	invalidated []string
}

func (m *listingCacheMock) InvalidateEvent(ctx context.Context, eventID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.invalidated = append(m.invalidated, eventID)
	return nil
}

type auditLogMock struct {
	lock  sync.Mutex
	names []string
}

func (m *auditLogMock) Append(ctx context.Context, header entities.EventHeader, eventName string, e any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.names = append(m.names, eventName)
	return nil
}

func newHandler() (event.Handler, *commandBusMock, *listingCacheMock, *auditLogMock) {
	bus := &commandBusMock{}
	cache := &listingCacheMock{}
	audit := &auditLogMock{}
	return event.NewHandler(bus, cache, audit, "guide@example.com"), bus, cache, audit
}

func bookingConfirmed() *entities.BookingConfirmed_v1 {
	return &entities.BookingConfirmed_v1{
		Header: entities.NewEventHeader(),
		Booking: entities.BookingSnapshot{
			BookingID:    "b1",
			EventID:      "e1",
			EventTitle:   "Via ferrata",
			EventStarts:  time.Date(2026, 8, 1, 8, 30, 0, 0, time.UTC),
			CustomerName: "Jane",
			Email:        "jane@example.com",
			Phone:        "0612345678",
			Quantity:     2,
			Seats:        2,
			Price:        9000,
			Currency:     "eur",
		},
		PaymentRef:     "pi_1",
		SeatsRemaining: 4,
	}
}

func TestSendCustomerConfirmation(t *testing.T) {
	h, bus, _, _ := newHandler()

	err := h.SendCustomerConfirmation(context.Background(), bookingConfirmed())
	require.NoError(t, err)

	require.Len(t, bus.commands, 1)
	assert.Equal(t, "jane@example.com", bus.commands[0].Email.To)
	assert.Equal(t, "customer-confirmation-b1", bus.commands[0].Header.IdempotencyKey)
}

func TestNotifyAdminOfBooking(t *testing.T) {
	h, bus, _, _ := newHandler()

	err := h.NotifyAdminOfBooking(context.Background(), bookingConfirmed())
	require.NoError(t, err)

	require.Len(t, bus.commands, 1)
	assert.Equal(t, "guide@example.com", bus.commands[0].Email.To)
	assert.Equal(t, "admin-booking-b1", bus.commands[0].Header.IdempotencyKey)
}

func TestAlertAdminOfOversold(t *testing.T) {
	h, bus, _, _ := newHandler()

	err := h.AlertAdminOfOversold(context.Background(), &entities.BookingOversold_v1{
		Header:         entities.NewEventHeader(),
		Booking:        bookingConfirmed().Booking,
		PaymentRef:     "pi_1",
		SeatsAvailable: 1,
	})
	require.NoError(t, err)

	require.Len(t, bus.commands, 1)
	assert.Equal(t, "guide@example.com", bus.commands[0].Email.To)
	assert.Contains(t, bus.commands[0].Email.Subject, "Refund needed")
}

func TestSendCustomerConfirmation_bus_error_is_retried(t *testing.T) {
	h, bus, _, _ := newHandler()
	bus.err = errors.New("redis down")

	err := h.SendCustomerConfirmation(context.Background(), bookingConfirmed())
	require.Error(t, err)
	assert.False(t, entities.IsPermanent(err))
}

func TestInvalidateListing(t *testing.T) {
	h, _, cache, _ := newHandler()

	require.NoError(t, h.InvalidateListingOnConfirmation(context.Background(), bookingConfirmed()))
	require.NoError(t, h.InvalidateListingOnCatalogUpdate(context.Background(), &entities.EventCatalogUpdated_v1{EventID: "e2"}))

	assert.Equal(t, []string{"e1", "e2"}, cache.invalidated)
}

func TestAuditLog(t *testing.T) {
	h, _, _, audit := newHandler()

	require.NoError(t, h.AuditBookingConfirmed(context.Background(), bookingConfirmed()))
	require.NoError(t, h.AuditBookingExpired(context.Background(), &entities.BookingExpired_v1{BookingID: "b2"}))

	assert.Equal(t, []string{"BookingConfirmed_v1", "BookingExpired_v1"}, audit.names)
}
