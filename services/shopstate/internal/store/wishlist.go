package store

import (
	"context"

	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

func productKey(p domain.Product) string { return p.ID }

func normalizeProducts(items []domain.Product) []domain.Product {
	return dedupe(items, productKey)
}

// WishlistStore is an insertion-ordered set of products.
type WishlistStore struct {
	c *collection[domain.Product]
}

// NewWishlistStore hydrates a wishlist from slot.
func NewWishlistStore(ctx context.Context, slot Slot[domain.Product], opts ...Option) *WishlistStore {
	return &WishlistStore{c: newCollection(ctx, NameWishlist, slot, normalizeProducts, opts)}
}

// Add appends p unless it is already present.
func (s *WishlistStore) Add(ctx context.Context, p domain.Product) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionAdd, func(items []domain.Product) (edit[domain.Product], error) {
		if indexOf(items, p.ID, productKey) >= 0 {
			return edit[domain.Product]{}, nil
		}
		return edit[domain.Product]{
			items:   append(items, p),
			change:  Change{ProductID: p.ID},
			changed: true,
		}, nil
	})
}

// Remove deletes productID if present.
func (s *WishlistStore) Remove(ctx context.Context, productID string) (Outcome, error) {
	if err := requireID(productID); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionRemove, func(items []domain.Product) (edit[domain.Product], error) {
		return removeByID(items, productID, productKey), nil
	})
}

// Clear empties the wishlist.
func (s *WishlistStore) Clear(ctx context.Context) (Outcome, error) {
	return s.c.mutate(ctx, ActionClear, clearAll[domain.Product])
}

// Contains reports whether productID is in the wishlist.
func (s *WishlistStore) Contains(productID string) bool {
	return indexOf(s.c.snapshot(), productID, productKey) >= 0
}

// Items returns the wishlist in insertion order.
func (s *WishlistStore) Items() []domain.Product { return s.c.snapshot() }

// IDs returns the product ids in insertion order.
func (s *WishlistStore) IDs() []string {
	items := s.c.snapshot()
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	return ids
}

// TotalItems is the number of products.
func (s *WishlistStore) TotalItems() int { return len(s.c.snapshot()) }

// Subscribe registers fn and returns a function that unregisters it.
func (s *WishlistStore) Subscribe(fn Subscriber) func() { return s.c.subscribe(fn) }

// Refresh reloads the wishlist from its slot.
func (s *WishlistStore) Refresh(ctx context.Context) error { return s.c.refresh(ctx) }
