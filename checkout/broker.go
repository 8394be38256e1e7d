package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// The gateway refuses sessions expiring sooner than this.
const minSessionTTL = 30 * time.Minute

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (entities.CheckoutSession, error)
}

type SessionAttacher interface {
	AttachSession(ctx context.Context, bookingID string, sessionID string) error
}

type Broker struct {
	gateway    PaymentGateway
	sessions   SessionAttacher
	sessionTTL time.Duration
	attachWait time.Duration
	now        func() time.Time
}

// NewBroker opens payment sessions that expire slightly before the booking's pending TTL,
// so the gateway gives up on the session before the booking is reaped.
func NewBroker(gateway PaymentGateway, sessions SessionAttacher, pendingTTL time.Duration) Broker {
	if gateway == nil {
		panic("gateway is nil")
	}
	if sessions == nil {
		panic("sessions is nil")
	}

	sessionTTL := pendingTTL - 5*time.Minute
	if sessionTTL < minSessionTTL {
		sessionTTL = minSessionTTL
	}

	return Broker{
		gateway:    gateway,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		attachWait: 100 * time.Millisecond,
		now:        time.Now,
	}
}

func (b Broker) OpenSession(ctx context.Context, booking entities.Booking, quote entities.Quote) (string, error) {
	session, err := b.gateway.CreateCheckoutSession(ctx, entities.CheckoutSessionRequest{
		BookingID:      booking.BookingID,
		EventID:        booking.EventID,
		CustomerEmail:  booking.Email,
		Currency:       booking.Currency,
		LineItems:      lineItems(booking, quote),
		ExpiresAt:      b.now().Add(b.sessionTTL),
		IdempotencyKey: booking.BookingID,
	})
	if err != nil {
		if !errors.Is(err, entities.ErrGateway) {
			err = fmt.Errorf("%w: %w", entities.ErrGateway, err)
		}
		return "", err
	}

	logger := log.FromContext(ctx).WithField("booking_id", booking.BookingID).WithField("session_id", session.SessionID)

	// The session already exists: the customer can pay even if the write-back fails,
	// and the webhook carries the booking id in its metadata anyway.
	err = retry.Retry(
		func(attempt uint) error {
			return b.sessions.AttachSession(ctx, booking.BookingID, session.SessionID)
		},
		strategy.Limit(3),
		strategy.Backoff(backoff.Exponential(b.attachWait, 2)),
	)
	if err != nil {
		logger.WithError(err).Error("Could not attach checkout session to booking")
	} else {
		logger.Info("Checkout session opened")
	}

	return session.RedirectURL, nil
}

func lineItems(booking entities.Booking, quote entities.Quote) []entities.LineItem {
	var items []entities.LineItem

	title := quote.Event.Title
	if title == "" {
		title = "Outing"
	}

	if quote.Privatized {
		items = append(items, entities.LineItem{
			Name:      fmt.Sprintf("Private outing: %s", title),
			UnitPrice: quote.TotalBeforeAddOns,
			Quantity:  1,
		})
	} else {
		items = append(items, entities.LineItem{
			Name:      title,
			UnitPrice: quote.UnitPrice,
			Quantity:  quote.Quantity,
		})
	}

	if booking.AddOnTotal > 0 {
		items = append(items, entities.LineItem{
			Name:      "Equipment rental",
			UnitPrice: booking.AddOnTotal,
			Quantity:  1,
		})
	}

	return items
}
