package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/cache"
	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestEventListing(t *testing.T) {
	ctx := context.Background()
	listing := cache.NewEventListing(redisClient(t), time.Minute)

	eventID := uuid.NewString()
	require.NoError(t, listing.InvalidateEvent(ctx, eventID))

	_, ok, err := listing.Event(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, ok)

	price := entities.Money(4500)
	require.NoError(t, listing.SetEvent(ctx, entities.Event{EventID: eventID, Title: "Rafting", Price: &price}))
	require.NoError(t, listing.SetUpcoming(ctx, []entities.Event{{EventID: eventID}}))

	cached, ok, err := listing.Event(ctx, eventID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Rafting", cached.Title)
	assert.Equal(t, price, *cached.Price)

	require.NoError(t, listing.InvalidateEvent(ctx, eventID))

	_, ok, err = listing.Upcoming(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeduplicator(t *testing.T) {
	ctx := context.Background()
	dedup := cache.NewDeduplicator(redisClient(t))
	key := "test:" + uuid.NewString()

	claimed, err := dedup.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = dedup.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, dedup.Release(ctx, key))

	claimed, err = dedup.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}
