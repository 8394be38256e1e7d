package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/redis/go-redis/v9"
)

var ErrMessageNotFound = errors.New("message not found")

type PoisonedMessage struct {
	ID            string
	Reason        string
	OriginalTopic string
	Handler       string

	streamID string
	msg      *message.Message
}

// PoisonQueue reads the poison queue stream directly, so inspecting it does not consume anything.
type PoisonQueue struct {
	rdb         *redis.Client
	publisher   message.Publisher
	topic       string
	unmarshaler redisstream.DefaultMarshallerUnmarshaller
}

func NewPoisonQueue(rdb *redis.Client, publisher message.Publisher, topic string) PoisonQueue {
	return PoisonQueue{
		rdb:       rdb,
		publisher: publisher,
		topic:     topic,
	}
}

func (q PoisonQueue) Preview(ctx context.Context) ([]PoisonedMessage, error) {
	entries, err := q.rdb.XRange(ctx, q.topic, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", q.topic, err)
	}

	messages := make([]PoisonedMessage, 0, len(entries))
	for _, entry := range entries {
		msg, err := q.unmarshaler.Unmarshal(entry.Values)
		if err != nil {
			return nil, fmt.Errorf("could not unmarshal stream entry %s: %w", entry.ID, err)
		}

		messages = append(messages, PoisonedMessage{
			ID:            msg.UUID,
			Reason:        msg.Metadata.Get(middleware.ReasonForPoisonedKey),
			OriginalTopic: msg.Metadata.Get(middleware.PoisonedTopicKey),
			Handler:       msg.Metadata.Get(middleware.PoisonedHandlerKey),
			streamID:      entry.ID,
			msg:           msg,
		})
	}

	return messages, nil
}

func (q PoisonQueue) Remove(ctx context.Context, messageID string) error {
	poisoned, err := q.find(ctx, messageID)
	if err != nil {
		return err
	}

	return q.rdb.XDel(ctx, q.topic, poisoned.streamID).Err()
}

// Requeue publishes the message back to the topic it was consumed from, then drops it from the queue.
func (q PoisonQueue) Requeue(ctx context.Context, messageID string) error {
	poisoned, err := q.find(ctx, messageID)
	if err != nil {
		return err
	}

	if poisoned.OriginalTopic == "" {
		return fmt.Errorf("message %s has no original topic", messageID)
	}

	msg := poisoned.msg.Copy()
	for _, key := range []string{
		middleware.ReasonForPoisonedKey,
		middleware.PoisonedTopicKey,
		middleware.PoisonedHandlerKey,
		middleware.PoisonedSubscriberKey,
	} {
		delete(msg.Metadata, key)
	}

	if err := q.publisher.Publish(poisoned.OriginalTopic, msg); err != nil {
		return fmt.Errorf("could not publish message %s to %s: %w", messageID, poisoned.OriginalTopic, err)
	}

	return q.rdb.XDel(ctx, q.topic, poisoned.streamID).Err()
}

func (q PoisonQueue) find(ctx context.Context, messageID string) (PoisonedMessage, error) {
	messages, err := q.Preview(ctx)
	if err != nil {
		return PoisonedMessage{}, err
	}

	for _, m := range messages {
		if m.ID == messageID {
			return m, nil
		}
	}

	return PoisonedMessage{}, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
}
