package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

type PaymentGatewayMock struct {
	lock     sync.Mutex
	sessions []entities.CheckoutSessionRequest
	Err      error
}

func (m *PaymentGatewayMock) CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (entities.CheckoutSession, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return entities.CheckoutSession{}, m.Err
	}

	m.sessions = append(m.sessions, req)
	sessionID := fmt.Sprintf("cs_test_%s", req.BookingID)

	return entities.CheckoutSession{
		SessionID:   sessionID,
		RedirectURL: "https://checkout.stripe.com/c/pay/" + sessionID,
	}, nil
}

func (m *PaymentGatewayMock) Sessions() []entities.CheckoutSessionRequest {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]entities.CheckoutSessionRequest(nil), m.sessions...)
}
