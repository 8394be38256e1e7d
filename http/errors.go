package http

import (
	"errors"
	"net/http"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
)

// errorHandler turns domain errors into status codes before echo renders them.
func errorHandler(next echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		next(toHTTPError(err, c), c)
	}
}

func toHTTPError(err error, c echo.Context) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case errors.Is(err, entities.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrInvalidSignature):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	case errors.Is(err, entities.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	case errors.Is(err, entities.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, entities.ErrInsufficientInventory):
		return echo.NewHTTPError(http.StatusConflict, "not enough seats left for this outing")
	case errors.Is(err, entities.ErrPriceUndefined):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "this outing cannot be booked online")
	case errors.Is(err, entities.ErrGateway):
		log.FromContext(c.Request().Context()).WithError(err).Error("Payment gateway failure")
		return echo.NewHTTPError(http.StatusBadGateway, "payment provider unavailable, please retry")
	}

	log.FromContext(c.Request().Context()).WithError(err).Error("Request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
