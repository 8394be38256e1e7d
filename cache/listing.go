package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/redis/go-redis/v9"
)

const (
	upcomingEventsKey = "outings:listing:upcoming"
	eventKeyPrefix    = "outings:listing:event:"
)

// EventListing caches the public event listing. It is invalidated on confirmations and catalog writes.
type EventListing struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEventListing(rdb *redis.Client, ttl time.Duration) EventListing {
	if rdb == nil {
		panic("redis client is nil")
	}
	return EventListing{rdb: rdb, ttl: ttl}
}

func (c EventListing) Upcoming(ctx context.Context) ([]entities.Event, bool, error) {
	var events []entities.Event
	ok, err := c.get(ctx, upcomingEventsKey, &events)
	return events, ok, err
}

func (c EventListing) SetUpcoming(ctx context.Context, events []entities.Event) error {
	return c.set(ctx, upcomingEventsKey, events)
}

func (c EventListing) Event(ctx context.Context, eventID string) (entities.Event, bool, error) {
	var event entities.Event
	ok, err := c.get(ctx, eventKeyPrefix+eventID, &event)
	return event, ok, err
}

func (c EventListing) SetEvent(ctx context.Context, event entities.Event) error {
	return c.set(ctx, eventKeyPrefix+event.EventID, event)
}

func (c EventListing) InvalidateEvent(ctx context.Context, eventID string) error {
	if err := c.rdb.Del(ctx, upcomingEventsKey, eventKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("could not invalidate listing of event %s: %w", eventID, err)
	}
	return nil
}

func (c EventListing) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not read %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("could not decode %s from cache: %w", key, err)
	}

	return true, nil
}

func (c EventListing) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("could not write %s to cache: %w", key, err)
	}

	return nil
}
