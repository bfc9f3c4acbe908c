package memory

import (
	"context"
	"sync"

	apperrors "github.com/maysa/storefront/pkg/errors"
)

type key struct {
	session string
	slot    string
}

// SlotStore keeps slots in process memory. State is lost on restart; it
// backs STORAGE_BACKEND=memory and tests.
type SlotStore struct {
	mu    sync.RWMutex
	slots map[key][]byte
}

// NewSlotStore creates an empty store.
func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[key][]byte)}
}

// Load returns a copy of the slot payload.
func (s *SlotStore) Load(_ context.Context, sessionID, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.slots[key{sessionID, slot}]
	if !ok {
		return nil, apperrors.NotFound("slot", sessionID+"/"+slot)
	}
	return append([]byte(nil), raw...), nil
}

// Save stores a copy of payload.
func (s *SlotStore) Save(_ context.Context, sessionID, slot string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key{sessionID, slot}] = append([]byte(nil), payload...)
	return nil
}

// Delete removes the slot.
func (s *SlotStore) Delete(_ context.Context, sessionID, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, key{sessionID, slot})
	return nil
}

// Ping always succeeds.
func (s *SlotStore) Ping(context.Context) error { return nil }
