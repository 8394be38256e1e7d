package message

import (
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/observability"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const PoisonQueueTopic = "PoisonQueue"

func useMiddlewares(router *message.Router, poisonQueuePublisher message.Publisher, watermillLogger watermill.LoggerAdapter) error {
	router.AddMiddleware(middleware.Recoverer)

	router.AddMiddleware(func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) (events []*message.Message, err error) {
			ctx := msg.Context()

			reqCorrelationID := msg.Metadata.Get("correlation_id")
			if reqCorrelationID == "" {
				reqCorrelationID = shortuuid.New()
			}

			ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{"correlation_id": reqCorrelationID}))
			ctx = log.ContextWithCorrelationID(ctx, reqCorrelationID)

			msg.SetContext(ctx)

			return h(msg)
		}
	})

	router.AddMiddleware(func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			logger := log.FromContext(msg.Context()).WithFields(logrus.Fields{
				"message_id": msg.UUID,
				"name":       msg.Metadata.Get("name"),
				"handler":    message.HandlerNameFromCtx(msg.Context()),
			})

			logger.Info("Handling a message")

			msgs, err := next(msg)
			if err != nil {
				logger.WithError(err).Error("Error while handling a message")
			}

			return msgs, err
		}
	})

	router.AddMiddleware(observability.TracingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	// Permanent failures (a broken template, an unknown recipient) go straight to the poison queue.
	poisonQueue, err := middleware.PoisonQueueWithFilter(poisonQueuePublisher, PoisonQueueTopic, entities.IsPermanent)
	if err != nil {
		return err
	}
	router.AddMiddleware(poisonQueue)

	// Stops hammering the email provider while it is down.
	circuitBreaker := middleware.NewCircuitBreaker(gobreaker.Settings{
		Name:    "message-handlers",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 20
		},
	})
	router.AddMiddleware(circuitBreaker.Middleware)

	router.AddMiddleware(middleware.NewThrottle(100, time.Second).Middleware)

	return nil
}
