package checkout

import (
	"context"
	"errors"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/metrics"
	"github.com/facenordgraphisme/test-mon-coach-sub000/reservation"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

type Resolver interface {
	Resolve(ctx context.Context, eventID string, quantity int, privatize bool) (entities.Quote, error)
	ResolveAddOns(ctx context.Context, event entities.Event, selections []entities.AddOnSelection) (entities.AddOns, error)
}

type Reservations interface {
	CreateBooking(ctx context.Context, req reservation.NewBooking) (entities.Booking, error)
}

type SessionOpener interface {
	OpenSession(ctx context.Context, booking entities.Booking, quote entities.Quote) (string, error)
}

// Service turns a checkout request into a pending booking and a payment redirect.
type Service struct {
	resolver     Resolver
	reservations Reservations
	broker       SessionOpener
}

func NewService(resolver Resolver, reservations Reservations, broker SessionOpener) Service {
	if resolver == nil {
		panic("resolver is nil")
	}
	if reservations == nil {
		panic("reservations is nil")
	}
	if broker == nil {
		panic("broker is nil")
	}

	return Service{
		resolver:     resolver,
		reservations: reservations,
		broker:       broker,
	}
}

func (s Service) Initiate(ctx context.Context, req entities.CheckoutRequest) (resp entities.CheckoutResponse, err error) {
	defer func() {
		metrics.CheckoutsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	}()

	logger := log.FromContext(ctx).WithField("event_id", req.EventID)
	if req.Price != nil {
		logger.WithField("client_price", *req.Price).Debug("Ignoring client-supplied price")
	}

	quote, err := s.resolver.Resolve(ctx, req.EventID, req.Quantity, req.Privatize)
	if err != nil {
		return entities.CheckoutResponse{}, err
	}

	addOns, err := s.resolver.ResolveAddOns(ctx, quote.Event, req.Rentals)
	if err != nil {
		return entities.CheckoutResponse{}, err
	}

	booking, err := s.reservations.CreateBooking(ctx, reservation.NewBooking{
		Quote: quote,
		Customer: entities.Customer{
			Name:  req.CustomerName,
			Email: req.Email,
			Phone: req.Phone,
		},
		Participants: req.Participants,
		AddOns:       addOns,
	})
	if err != nil {
		return entities.CheckoutResponse{}, err
	}

	redirectURL, err := s.broker.OpenSession(ctx, booking, quote)
	if err != nil {
		logger.WithError(err).WithField("booking_id", booking.BookingID).Warn("Could not open checkout session")
		return entities.CheckoutResponse{}, err
	}

	return entities.CheckoutResponse{
		RedirectURL: redirectURL,
		BookingID:   booking.BookingID,
	}, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "session_opened"
	case errors.Is(err, entities.ErrValidation):
		return "invalid"
	case errors.Is(err, entities.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, entities.ErrPriceUndefined):
		return "price_undefined"
	case errors.Is(err, entities.ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, entities.ErrGateway):
		return "gateway_error"
	default:
		return "error"
	}
}
