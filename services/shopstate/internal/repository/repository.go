package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/pkg/tracing"
)

// Slot names, one per store.
const (
	SlotCart           = "cart"
	SlotWishlist       = "wishlist"
	SlotComparison     = "comparison"
	SlotRecentlyViewed = "recently_viewed"
)

// SlotStore persists raw slot payloads addressed by (sessionID, slot).
type SlotStore interface {
	// Load returns the payload, or an error matching apperrors.ErrNotFound
	// when the slot has never been written or was cleared.
	Load(ctx context.Context, sessionID, slot string) ([]byte, error)

	// Save overwrites the slot.
	Save(ctx context.Context, sessionID, slot string, payload []byte) error

	// Delete removes the slot. Deleting an absent slot is not an error.
	Delete(ctx context.Context, sessionID, slot string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Slot is one session slot holding a JSON array of T.
type Slot[T any] struct {
	store     SlotStore
	sessionID string
	name      string
}

// Bind returns the slot name of sessionID on store.
func Bind[T any](store SlotStore, sessionID, name string) *Slot[T] {
	return &Slot[T]{store: store, sessionID: sessionID, name: name}
}

// Name returns the slot name.
func (s *Slot[T]) Name() string { return s.name }

// Load reads the latest snapshot. A missing slot is an empty collection.
func (s *Slot[T]) Load(ctx context.Context) (items []T, err error) {
	ctx, span := tracing.Start(ctx, "repository", "slot.load", attribute.String("slot", s.name))
	defer func() { tracing.End(span, err) }()

	raw, err := s.store.Load(ctx, s.sessionID, s.name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s slot: %w", s.name, err)
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal %s slot: %w", s.name, err)
	}
	return items, nil
}

// Save writes the whole collection.
func (s *Slot[T]) Save(ctx context.Context, items []T) (err error) {
	ctx, span := tracing.Start(ctx, "repository", "slot.save",
		attribute.String("slot", s.name),
		attribute.Int("items", len(items)),
	)
	defer func() { tracing.End(span, err) }()

	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s slot: %w", s.name, err)
	}
	if err := s.store.Save(ctx, s.sessionID, s.name, raw); err != nil {
		return fmt.Errorf("save %s slot: %w", s.name, err)
	}
	return nil
}

// Clear removes the slot.
func (s *Slot[T]) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.sessionID, s.name); err != nil {
		return fmt.Errorf("clear %s slot: %w", s.name, err)
	}
	return nil
}
