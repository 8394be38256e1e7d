package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type eventRequest struct {
	EventID            string             `json:"event_id"`
	ActivityID         string             `json:"activity_id"`
	Title              string             `json:"title"`
	Location           string             `json:"location"`
	StartsAt           time.Time          `json:"starts_at"`
	DurationMinutes    int                `json:"duration_minutes"`
	Price              *string            `json:"price"`
	PrivatizationPrice *string            `json:"privatization_price"`
	Currency           string             `json:"currency"`
	MaxParticipants    int                `json:"max_participants"`
	Discounts          entities.Discounts `json:"discounts"`
}

type eventResponse struct {
	EventID            string               `json:"event_id"`
	ActivityID         string               `json:"activity_id"`
	Title              string               `json:"title"`
	Location           string               `json:"location"`
	StartsAt           time.Time            `json:"starts_at"`
	DurationMinutes    int                  `json:"duration_minutes"`
	Price              *string              `json:"price"`
	PrivatizationPrice *string              `json:"privatization_price,omitempty"`
	Currency           string               `json:"currency"`
	MaxParticipants    int                  `json:"max_participants"`
	SeatsAvailable     int                  `json:"seats_available"`
	Status             entities.EventStatus `json:"status"`
	Discounts          entities.Discounts   `json:"discounts"`
}

func newEventResponse(event entities.Event) eventResponse {
	formatMoney := func(m *entities.Money) *string {
		if m == nil {
			return nil
		}
		return lo.ToPtr(m.String())
	}

	return eventResponse{
		EventID:            event.EventID,
		ActivityID:         event.ActivityID,
		Title:              event.Title,
		Location:           event.Location,
		StartsAt:           event.StartsAt,
		DurationMinutes:    event.DurationMinutes,
		Price:              formatMoney(event.Price),
		PrivatizationPrice: formatMoney(event.PrivatizationPrice),
		Currency:           event.Currency,
		MaxParticipants:    event.MaxParticipants,
		SeatsAvailable:     event.RemainingSeats(),
		Status:             event.Status,
		Discounts:          event.Discounts,
	}
}

func parseOptionalMoney(amount *string) (*entities.Money, error) {
	if amount == nil {
		return nil, nil
	}
	m, err := entities.ParseMoney(*amount)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (h Handler) PostEvents(c echo.Context) error {
	var req eventRequest

	err := c.Bind(&req)
	if err != nil {
		return err
	}

	price, err := parseOptionalMoney(req.Price)
	if err != nil {
		return err
	}
	privatizationPrice, err := parseOptionalMoney(req.PrivatizationPrice)
	if err != nil {
		return err
	}

	event := entities.Event{
		EventID:            req.EventID,
		ActivityID:         req.ActivityID,
		Title:              req.Title,
		Location:           req.Location,
		StartsAt:           req.StartsAt,
		DurationMinutes:    req.DurationMinutes,
		Price:              price,
		PrivatizationPrice: privatizationPrice,
		Currency:           lo.Ternary(req.Currency == "", "eur", req.Currency),
		MaxParticipants:    req.MaxParticipants,
		SeatsAvailable:     lo.ToPtr(req.MaxParticipants),
		Status:             entities.EventStatusAvailable,
		Discounts:          req.Discounts,
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	if err := event.Validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()

	if err := h.events.Create(ctx, event); err != nil {
		return err
	}

	err = h.eventBus.Publish(ctx, entities.EventCatalogUpdated_v1{
		Header:  entities.NewEventHeader(),
		EventID: event.EventID,
	})
	if err != nil {
		// The listing cache expires on its own.
		log.FromContext(ctx).WithError(err).Warn("Could not publish catalog update")
	}

	return c.JSON(http.StatusCreated, newEventResponse(event))
}

func (h Handler) GetEvents(c echo.Context) error {
	ctx := c.Request().Context()
	logger := log.FromContext(ctx)

	events, ok, err := h.listingCache.Upcoming(ctx)
	if err != nil {
		logger.WithError(err).Warn("Listing cache unavailable")
	}

	if !ok {
		events, err = h.events.ListUpcoming(ctx, h.now())
		if err != nil {
			return fmt.Errorf("could not list events: %w", err)
		}

		if err := h.listingCache.SetUpcoming(ctx, events); err != nil {
			logger.WithError(err).Warn("Could not cache listing")
		}
	}

	return c.JSON(http.StatusOK, lo.Map(events, func(e entities.Event, _ int) eventResponse {
		return newEventResponse(e)
	}))
}

func (h Handler) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")

	event, ok, err := h.listingCache.Event(ctx, eventID)
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("Listing cache unavailable")
	}

	if !ok {
		event, err = h.events.Get(ctx, eventID)
		if err != nil {
			return err
		}

		if err := h.listingCache.SetEvent(ctx, event); err != nil {
			log.FromContext(ctx).WithError(err).Warn("Could not cache event")
		}
	}

	return c.JSON(http.StatusOK, newEventResponse(event))
}
