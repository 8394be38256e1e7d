package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "outings"

var (
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_webhook_events_total",
		Help:      "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})

	SeatsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seats_confirmed_total",
		Help:      "Seats taken by confirmed bookings.",
	})

	BookingsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_expired_total",
		Help:      "Pending bookings expired without payment.",
	})
)
