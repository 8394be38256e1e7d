package reservation

import (
	"context"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/metrics"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

type abandonedBookingsExpirer interface {
	ExpireAbandoned(ctx context.Context) ([]entities.Booking, error)
}

// Reaper periodically expires pending bookings whose payment never completed.
type Reaper struct {
	expirer  abandonedBookingsExpirer
	interval time.Duration
}

func NewReaper(expirer abandonedBookingsExpirer, interval time.Duration) *Reaper {
	return &Reaper{
		expirer:  expirer,
		interval: interval,
	}
}

func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger := log.FromContext(ctx)
	logger.WithField("interval", r.interval).Info("Reaper started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reaper stopped")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reaper) tick(ctx context.Context) {
	expired, err := r.expirer.ExpireAbandoned(ctx)
	if err != nil {
		log.FromContext(ctx).WithError(err).Error("Failed to expire abandoned bookings")
		return
	}

	metrics.BookingsExpiredTotal.Add(float64(len(expired)))
	for _, b := range expired {
		log.FromContext(ctx).
			WithField("booking_id", b.BookingID).
			WithField("event_id", b.EventID).
			Info("Booking expired")
	}
}
