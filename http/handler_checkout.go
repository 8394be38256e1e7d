package http

import (
	"net/http"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/labstack/echo/v4"
)

func (h Handler) PostCheckout(c echo.Context) error {
	var req entities.CheckoutRequest

	err := c.Bind(&req)
	if err != nil {
		return err
	}

	if req.EventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "eventId is required")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
	}

	resp, err := h.checkout.Initiate(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}
