package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/db"
	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customer = entities.Customer{Name: "Jane Doe", Email: "jane@example.com", Phone: "0612345678"}

func quote(unitPrice entities.Money, quantity int) entities.Quote {
	return entities.Quote{
		Event:             entities.Event{EventID: "e1"},
		Quantity:          quantity,
		SeatsToReserve:    quantity,
		UnitPrice:         unitPrice,
		TotalBeforeAddOns: unitPrice.Times(quantity),
		Currency:          "eur",
	}
}

func TestCreateBooking_total_price(t *testing.T) {
	catalog := db.NewCatalogMock()
	manager := reservation.NewManager(catalog, 35*time.Minute)

	booking, err := manager.CreateBooking(context.Background(), reservation.NewBooking{
		Quote:    quote(4500, 3),
		Customer: customer,
		AddOns:   entities.AddOns{{RentalItemID: "wetsuit", Name: "Wetsuit", Quantity: 1, UnitPrice: 2000}},
	})
	require.NoError(t, err)

	assert.Equal(t, entities.Money(15500), booking.Price)
	assert.Equal(t, entities.Money(2000), booking.AddOnTotal)
	assert.Equal(t, entities.BookingStatusPending, booking.Status)
	assert.Equal(t, 3, booking.SeatsReserved)

	stored, err := catalog.BookingByID(context.Background(), booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.Money(15500), stored.Price)
	assert.Nil(t, stored.CheckoutSessionID)
}

func TestCreateBooking_validation(t *testing.T) {
	catalog := db.NewCatalogMock()
	manager := reservation.NewManager(catalog, 35*time.Minute)

	testCases := []struct {
		Name string
		Req  reservation.NewBooking
	}{
		{
			Name: "missing_name",
			Req:  reservation.NewBooking{Quote: quote(4500, 1), Customer: entities.Customer{Email: "jane@example.com", Phone: "0612345678"}},
		},
		{
			Name: "invalid_email",
			Req:  reservation.NewBooking{Quote: quote(4500, 1), Customer: entities.Customer{Name: "Jane", Email: "jane", Phone: "0612345678"}},
		},
		{
			Name: "too_many_participants",
			Req: reservation.NewBooking{
				Quote:        quote(4500, 1),
				Customer:     customer,
				Participants: []entities.Participant{{Name: "A"}, {Name: "B"}},
			},
		},
		{
			Name: "unnamed_participant",
			Req: reservation.NewBooking{
				Quote:        quote(4500, 2),
				Customer:     customer,
				Participants: []entities.Participant{{Name: "A"}, {HeightCm: 180}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := manager.CreateBooking(context.Background(), tc.Req)
			assert.ErrorIs(t, err, entities.ErrValidation)
		})
	}

	assert.Empty(t, catalog.Bookings())
}

func TestCreateBooking_persistence_error(t *testing.T) {
	catalog := db.NewCatalogMock()
	catalog.CreateBookingErr = errors.New("connection refused")
	manager := reservation.NewManager(catalog, 35*time.Minute)

	_, err := manager.CreateBooking(context.Background(), reservation.NewBooking{Quote: quote(4500, 1), Customer: customer})
	assert.ErrorIs(t, err, entities.ErrPersistence)
}

func TestAttachSession(t *testing.T) {
	catalog := db.NewCatalogMock()
	manager := reservation.NewManager(catalog, 35*time.Minute)

	booking, err := manager.CreateBooking(context.Background(), reservation.NewBooking{Quote: quote(4500, 1), Customer: customer})
	require.NoError(t, err)

	require.NoError(t, manager.AttachSession(context.Background(), booking.BookingID, "cs_test_1"))

	stored, err := manager.Get(context.Background(), booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", *stored.CheckoutSessionID)
	assert.Equal(t, entities.BookingStatusPending, stored.Status)
}

type expirerMock struct {
	lock  sync.Mutex
	calls int
	err   error
}

func (m *expirerMock) ExpireAbandoned(ctx context.Context) ([]entities.Booking, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls++
	return []entities.Booking{{BookingID: "b1", EventID: "e1"}}, m.err
}

func (m *expirerMock) Calls() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.calls
}

func TestReaper_runs_until_cancelled(t *testing.T) {
	expirer := &expirerMock{}
	reaper := reservation.NewReaper(expirer, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- reaper.Run(ctx)
	}()

	assert.EventuallyWithT(t, func(t *assert.CollectT) {
		assert.GreaterOrEqual(t, expirer.Calls(), 2)
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on context cancel")
	}
}

func TestReaper_keeps_running_after_error(t *testing.T) {
	expirer := &expirerMock{err: errors.New("db error")}
	reaper := reservation.NewReaper(expirer, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	require.NoError(t, reaper.Run(ctx))
	assert.GreaterOrEqual(t, expirer.Calls(), 2)
}

func TestExpireAbandoned(t *testing.T) {
	catalog := db.NewCatalogMock()
	manager := reservation.NewManager(catalog, 35*time.Minute)

	booking, err := manager.CreateBooking(context.Background(), reservation.NewBooking{Quote: quote(4500, 1), Customer: customer})
	require.NoError(t, err)

	expired, err := manager.ExpireAbandoned(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expired, "fresh bookings are kept")

	stored, err := manager.Get(context.Background(), booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusPending, stored.Status)
}

func TestExpireAbandoned_expires_old_pending_bookings(t *testing.T) {
	catalog := db.NewCatalogMock()
	manager := reservation.NewManager(catalog, 35*time.Minute)

	booking, err := manager.CreateBooking(context.Background(), reservation.NewBooking{Quote: quote(4500, 1), Customer: customer})
	require.NoError(t, err)

	later := reservation.WithClock(manager, func() time.Time { return time.Now().Add(time.Hour) })

	expired, err := later.ExpireAbandoned(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, booking.BookingID, expired[0].BookingID)

	stored, err := manager.Get(context.Background(), booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusExpired, stored.Status)
	assert.IsType(t, entities.BookingExpired_v1{}, catalog.Published()[0])
}
