package http

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

// newEcho logs request metadata only. Bodies carry customer contact and medical details and are never logged.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: func() string {
				return shortuuid.New()
			},
		}),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogURI:       true,
			LogRequestID: true,
			LogStatus:    true,
			LogMethod:    true,
			LogLatency:   true,
			LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
				log.FromContext(c.Request().Context()).WithFields(logrus.Fields{
					"URI":        values.URI,
					"request_id": values.RequestID,
					"status":     values.Status,
					"method":     values.Method,
					"duration":   values.Latency.String(),
				}).WithError(values.Error).Info("Request done")

				return nil
			},
		}),
		useCorrelationID,
	)

	return e
}

func useCorrelationID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()

		correlationID := req.Header.Get(log.CorrelationIDHttpHeader)
		if correlationID == "" {
			correlationID = shortuuid.New()
		}

		ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{"correlation_id": correlationID}))
		ctx = log.ContextWithCorrelationID(ctx, correlationID)

		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(log.CorrelationIDHttpHeader, correlationID)

		return next(c)
	}
}
