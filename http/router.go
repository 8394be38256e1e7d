package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	libHttp "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

type RouterDependencies struct {
	Checkout     CheckoutService
	Webhooks     WebhookHandler
	Events       EventRepository
	Activities   ActivityRepository
	Bookings     BookingRepository
	ListingCache ListingCache
	EventBus     EventBus
	AdminToken   string
}

func NewHttpRouter(deps RouterDependencies) *echo.Echo {
	if deps.AdminToken == "" {
		panic("admin token is empty")
	}

	e := newEcho()
	e.HTTPErrorHandler = errorHandler(libHttp.HandleError)

	e.Use(otelecho.Middleware("svc-outings"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler := Handler{
		checkout:     deps.Checkout,
		webhooks:     deps.Webhooks,
		events:       deps.Events,
		activities:   deps.Activities,
		bookings:     deps.Bookings,
		listingCache: deps.ListingCache,
		eventBus:     deps.EventBus,
		now:          time.Now,
	}

	api := e.Group("/api")

	api.POST("/checkout", handler.PostCheckout)
	api.POST("/webhooks/stripe", handler.PostStripeWebhook)
	api.GET("/events", handler.GetEvents)
	api.GET("/events/:id", handler.GetEvent)
	api.GET("/bookings/:id", handler.GetBooking)

	adminOnly := middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
		return subtle.ConstantTimeCompare([]byte(key), []byte(deps.AdminToken)) == 1, nil
	})

	api.POST("/events", handler.PostEvents, adminOnly)
	api.GET("/events/:id/bookings", handler.GetEventBookings, adminOnly)
	api.POST("/activities", handler.PostActivities, adminOnly)

	return e
}
