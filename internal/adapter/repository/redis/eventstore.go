package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventStore implements usecase.EventStore using Redis. Event ids are kept
// with a TTL long enough to outlast the provider's retry window.
type EventStore struct {
	client *redis.Client
	prefix string
}

// NewEventStore creates a new EventStore.
func NewEventStore(client *redis.Client) *EventStore {
	return &EventStore{
		client: client,
		prefix: "webhook:event:",
	}
}

// MarkProcessed records an event id and reports whether this was its first
// delivery. SETNX makes the check-and-record atomic under concurrent
// deliveries of the same event.
func (s *EventStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+eventID, "1", ttl).Result()
}

// Unmark deletes a recorded event id. Called when processing failed after
// the mark, so the provider's redelivery is not mistaken for a duplicate.
func (s *EventStore) Unmark(ctx context.Context, eventID string) error {
	return s.client.Del(ctx, s.prefix+eventID).Err()
}
