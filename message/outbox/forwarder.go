package outbox

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

// NewForwarder moves committed outbox messages to the broker, registering its handler on router.
func NewForwarder(
	outboxSubscriber message.Subscriber,
	brokerPublisher message.Publisher,
	logger watermill.LoggerAdapter,
	router *message.Router,
) (*forwarder.Forwarder, error) {
	fwd, err := forwarder.NewForwarder(outboxSubscriber, brokerPublisher, logger,
		forwarder.Config{
			ForwarderTopic: topic,
			Router:         router,
			Middlewares: []message.HandlerMiddleware{
				func(h message.HandlerFunc) message.HandlerFunc {
					return func(msg *message.Message) ([]*message.Message, error) {
						log.FromContext(msg.Context()).WithFields(logrus.Fields{
							"message_id": msg.UUID,
							"metadata":   msg.Metadata,
						}).Debug("Forwarding message")
						return h(msg)
					}
				},
			},
		})
	if err != nil {
		return nil, err
	}

	return fwd, nil
}
