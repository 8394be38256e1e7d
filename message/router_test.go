package message_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/api"
	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	outingsMessage "github.com/facenordgraphisme/test-mon-coach-sub000/message"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/command"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/event"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deduplicatorMock struct {
	lock    sync.Mutex
	claimed map[string]struct{}
}

func (m *deduplicatorMock) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.claimed == nil {
		m.claimed = map[string]struct{}{}
	}
	if _, ok := m.claimed[key]; ok {
		return false, nil
	}
	m.claimed[key] = struct{}{}
	return true, nil
}

func (m *deduplicatorMock) Release(ctx context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.claimed, key)
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

func (m *listingCacheMock) Invalidated() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]string(nil), m.invalidated...)
}

type auditLogMock struct {
	lock sync.Mutex
	keys []string
}

func (m *auditLogMock) Append(ctx context.Context, header entities.EventHeader, eventName string, e any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.keys = append(m.keys, header.IdempotencyKey)
	return nil
}

func (m *auditLogMock) Keys() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]string(nil), m.keys...)
}

type routerFixture struct {
	eventBus *cqrs.EventBus
	notifier *api.NotifierMock
	cache    *listingCacheMock
	audit    *auditLogMock
	pubSub   *gochannel.GoChannel
}

func startRouter(t *testing.T) routerFixture {
	t.Helper()

	logger := watermill.NopLogger{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)

	notifier := &api.NotifierMock{}
	cache := &listingCacheMock{}
	audit := &auditLogMock{}

	commandBus := command.NewCommandBus(pubSub)

	router, err := outingsMessage.NewWatermillRouter(outingsMessage.RouterConfig{
		Publisher: pubSub,
		EventProcessorConfig: event.NewProcessorConfigWithSubscriber(
			func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return pubSub, nil
			},
			logger,
		),
		CommandProcessorConfig: command.NewProcessorConfigWithSubscriber(
			func(params cqrs.CommandProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return pubSub, nil
			},
			logger,
		),
		EventHandler:   event.NewHandler(commandBus, cache, audit, "guide@example.com"),
		CommandHandler: command.NewHandler(notifier, &deduplicatorMock{}),
	}, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = router.Close()
	})

	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	return routerFixture{
		eventBus: event.NewBus(pubSub),
		notifier: notifier,
		cache:    cache,
		audit:    audit,
		pubSub:   pubSub,
	}
}

func bookingConfirmed() entities.BookingConfirmed_v1 {
	return entities.BookingConfirmed_v1{
		Header: entities.NewEventHeaderWithIdempotencyKey("confirmed-b1"),
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

func TestRouter_booking_confirmed(t *testing.T) {
	f := startRouter(t)

	err := f.eventBus.Publish(context.Background(), bookingConfirmed())
	require.NoError(t, err)

	assert.EventuallyWithT(t, func(collect *assert.CollectT) {
		emails := f.notifier.SentEmails()
		if !assert.Len(collect, emails, 2) {
			return
		}
		recipients := []string{emails[0].To, emails[1].To}
		assert.ElementsMatch(collect, []string{"jane@example.com", "guide@example.com"}, recipients)

		assert.Equal(collect, []string{"e1"}, f.cache.Invalidated())
		assert.Equal(collect, []string{"confirmed-b1"}, f.audit.Keys())
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRouter_redelivered_event_sends_emails_once(t *testing.T) {
	f := startRouter(t)

	event := bookingConfirmed()
	require.NoError(t, f.eventBus.Publish(context.Background(), event))
	require.NoError(t, f.eventBus.Publish(context.Background(), event))

	assert.EventuallyWithT(t, func(collect *assert.CollectT) {
		assert.Len(collect, f.audit.Keys(), 2)
	}, 5*time.Second, 50*time.Millisecond)

	assert.Never(t, func() bool {
		return len(f.notifier.SentEmails()) > 2
	}, 500*time.Millisecond, 50*time.Millisecond)
	assert.Len(t, f.notifier.SentEmails(), 2)
}

func TestRouter_booking_oversold_alerts_admin(t *testing.T) {
	f := startRouter(t)

	err := f.eventBus.Publish(context.Background(), entities.BookingOversold_v1{
		Header:         entities.NewEventHeaderWithIdempotencyKey("oversold-b2"),
		Booking:        bookingConfirmed().Booking,
		PaymentRef:     "pi_2",
		SeatsAvailable: 0,
	})
	require.NoError(t, err)

	assert.EventuallyWithT(t, func(collect *assert.CollectT) {
		emails := f.notifier.SentEmails()
		if !assert.Len(collect, emails, 1) {
			return
		}
		assert.Equal(collect, "guide@example.com", emails[0].To)
	}, 5*time.Second, 50*time.Millisecond)
}
