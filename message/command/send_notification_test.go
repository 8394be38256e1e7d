package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/api"
	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/command"
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

func TestSendNotification_sends_once(t *testing.T) {
	notifier := &api.NotifierMock{}
	h := command.NewHandler(notifier, &deduplicatorMock{})

	cmd := &entities.SendNotification{
		Header: entities.NewEventHeaderWithIdempotencyKey("customer-confirmation-b1"),
		Email:  entities.Email{To: "jane@example.com", Subject: "Booking confirmed"},
	}

	require.NoError(t, h.SendNotification(context.Background(), cmd))
	require.NoError(t, h.SendNotification(context.Background(), cmd))

	assert.Len(t, notifier.SentEmails(), 1)
}

func TestSendNotification_releases_claim_on_failure(t *testing.T) {
	notifier := &api.NotifierMock{Err: errors.New("provider unavailable")}
	h := command.NewHandler(notifier, &deduplicatorMock{})

	cmd := &entities.SendNotification{
		Header: entities.NewEventHeaderWithIdempotencyKey("admin-booking-b1"),
		Email:  entities.Email{To: "guide@example.com"},
	}

	require.Error(t, h.SendNotification(context.Background(), cmd))

	notifier.SetError(nil)
	require.NoError(t, h.SendNotification(context.Background(), cmd))
	assert.Len(t, notifier.SentEmails(), 1)
}
