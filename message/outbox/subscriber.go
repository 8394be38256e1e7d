package outbox

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

// NewSubscriber reads the outbox table. Initializing the topic also creates the table publishers write to.
func NewSubscriber(db *sqlx.DB, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := watermillSQL.NewSubscriber(db, watermillSQL.SubscriberConfig{
		SchemaAdapter:  watermillSQL.DefaultPostgreSQLSchema{},
		OffsetsAdapter: watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create outbox subscriber: %w", err)
	}

	if err := sub.SubscribeInitialize(topic); err != nil {
		return nil, fmt.Errorf("could not initialize outbox topic: %w", err)
	}

	return sub, nil
}
