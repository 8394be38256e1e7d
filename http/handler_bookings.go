package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// bookingStatusResponse is what the customer sees on the post-payment page.
// It leaves out contact and participant details since the booking id is the only credential.
type bookingStatusResponse struct {
	BookingID  string                 `json:"booking_id"`
	EventID    string                 `json:"event_id"`
	Status     entities.BookingStatus `json:"status"`
	Quantity   int                    `json:"quantity"`
	Privatized bool                   `json:"privatized"`
	Price      string                 `json:"price"`
	Currency   string                 `json:"currency"`
}

type bookingResponse struct {
	BookingID          string                 `json:"booking_id"`
	Status             entities.BookingStatus `json:"status"`
	CustomerName       string                 `json:"customer_name"`
	Email              string                 `json:"email"`
	Phone              string                 `json:"phone"`
	Quantity           int                    `json:"quantity"`
	SeatsReserved      int                    `json:"seats_reserved"`
	Privatized         bool                   `json:"privatized"`
	Price              string                 `json:"price"`
	Currency           string                 `json:"currency"`
	AddOns             entities.AddOns        `json:"add_ons"`
	Participants       entities.Participants  `json:"participants"`
	CancellationReason *string                `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	ConfirmedAt        *time.Time             `json:"confirmed_at,omitempty"`
}

func (h Handler) GetBooking(c echo.Context) error {
	booking, err := h.bookings.BookingByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookingStatusResponse{
		BookingID:  booking.BookingID,
		EventID:    booking.EventID,
		Status:     booking.Status,
		Quantity:   booking.Quantity,
		Privatized: booking.Privatized,
		Price:      booking.Price.String(),
		Currency:   booking.Currency,
	})
}

func (h Handler) GetEventBookings(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")

	if _, err := h.events.Get(ctx, eventID); err != nil {
		return err
	}

	bookings, err := h.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed listing bookings of event %s: %w", eventID, err)
	}

	return c.JSON(http.StatusOK, lo.Map(bookings, func(b entities.Booking, _ int) bookingResponse {
		return bookingResponse{
			BookingID:          b.BookingID,
			Status:             b.Status,
			CustomerName:       b.CustomerName,
			Email:              b.Email,
			Phone:              b.Phone,
			Quantity:           b.Quantity,
			SeatsReserved:      b.SeatsReserved,
			Privatized:         b.Privatized,
			Price:              b.Price.String(),
			Currency:           b.Currency,
			AddOns:             b.AddOns,
			Participants:       b.Participants,
			CancellationReason: b.CancellationReason,
			CreatedAt:          b.CreatedAt,
			ConfirmedAt:        b.ConfirmedAt,
		}
	}))
}
