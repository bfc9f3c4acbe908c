package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/maysa/storefront/pkg/errors"
)

// SlotStore implements repository.SlotStore on Redis. Each slot is one string
// key, {prefix}{sessionID}:{slot}.
type SlotStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSlotStore creates a Redis-backed slot store. A zero ttl keeps slots
// until they are cleared.
func NewSlotStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SlotStore {
	return &SlotStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SlotStore) key(sessionID, slot string) string {
	return s.prefix + sessionID + ":" + slot
}

// Load reads the slot payload.
func (s *SlotStore) Load(ctx context.Context, sessionID, slot string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(sessionID, slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("slot", sessionID+"/"+slot)
		}
		return nil, fmt.Errorf("redis get slot: %w", err)
	}
	return data, nil
}

// Save writes the slot payload, refreshing the TTL when one is configured.
func (s *SlotStore) Save(ctx context.Context, sessionID, slot string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(sessionID, slot), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set slot: %w", err)
	}
	return nil
}

// Delete removes the slot key.
func (s *SlotStore) Delete(ctx context.Context, sessionID, slot string) error {
	if err := s.client.Del(ctx, s.key(sessionID, slot)).Err(); err != nil {
		return fmt.Errorf("redis del slot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SlotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
