package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/labstack/echo/v4"
)

// Larger bodies are rejected with 413 before the signature is checked.
const maxWebhookBodyBytes = 65536

type webhookResponse struct {
	Outcome entities.ConfirmationOutcome `json:"outcome"`
}

// PostStripeWebhook must read the raw body: the signature covers the exact bytes sent.
func (h Handler) PostStripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "webhook body too large")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}

	confirmation, err := h.webhooks.HandleWebhook(
		c.Request().Context(),
		payload,
		c.Request().Header.Get("Stripe-Signature"),
	)
	if errors.Is(err, entities.ErrInvalidSignature) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	}
	if err != nil {
		// The gateway redelivers on 5xx.
		return err
	}

	return c.JSON(http.StatusOK, webhookResponse{Outcome: confirmation.Outcome})
}
