package store

import (
	"context"
	"reflect"

	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

// DefaultRecentlyViewedLimit is used when no positive limit is given.
const DefaultRecentlyViewedLimit = 10

// RecentlyViewedStore is a most-recent-first list of viewed products with a
// fixed capacity. Only views reorder it; reads never do.
type RecentlyViewedStore struct {
	c     *collection[domain.Product]
	limit int
}

// NewRecentlyViewedStore hydrates the list from slot, keeping at most limit entries.
func NewRecentlyViewedStore(ctx context.Context, slot Slot[domain.Product], limit int, opts ...Option) *RecentlyViewedStore {
	if limit < 1 {
		limit = DefaultRecentlyViewedLimit
	}
	normalize := func(items []domain.Product) []domain.Product {
		items = dedupe(items, productKey)
		if len(items) > limit {
			items = items[:limit]
		}
		return items
	}
	return &RecentlyViewedStore{
		c:     newCollection(ctx, NameRecentlyViewed, slot, normalize, opts),
		limit: limit,
	}
}

// Add records a view of p: it moves to the front, and the oldest entry is
// dropped once the list exceeds its limit.
func (s *RecentlyViewedStore) Add(ctx context.Context, p domain.Product) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionAdd, func(items []domain.Product) (edit[domain.Product], error) {
		i := indexOf(items, p.ID, productKey)
		if i == 0 && reflect.DeepEqual(items[0], p) {
			return edit[domain.Product]{}, nil
		}
		if i > 0 {
			items = append(items[:i], items[i+1:]...)
		} else if i == 0 {
			items = items[1:]
		}

		next := make([]domain.Product, 0, min(len(items)+1, s.limit))
		next = append(next, p)
		for _, it := range items {
			if len(next) == s.limit {
				break
			}
			next = append(next, it)
		}
		return edit[domain.Product]{
			items:   next,
			change:  Change{ProductID: p.ID},
			changed: true,
		}, nil
	})
}

// Remove deletes productID if present.
func (s *RecentlyViewedStore) Remove(ctx context.Context, productID string) (Outcome, error) {
	if err := requireID(productID); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionRemove, func(items []domain.Product) (edit[domain.Product], error) {
		return removeByID(items, productID, productKey), nil
	})
}

// Clear empties the list.
func (s *RecentlyViewedStore) Clear(ctx context.Context) (Outcome, error) {
	return s.c.mutate(ctx, ActionClear, clearAll[domain.Product])
}

// Items returns the list, most recent first.
func (s *RecentlyViewedStore) Items() []domain.Product { return s.c.snapshot() }

// Limit returns the capacity.
func (s *RecentlyViewedStore) Limit() int { return s.limit }

// Subscribe registers fn and returns a function that unregisters it.
func (s *RecentlyViewedStore) Subscribe(fn Subscriber) func() { return s.c.subscribe(fn) }

// Refresh reloads the list from its slot.
func (s *RecentlyViewedStore) Refresh(ctx context.Context) error { return s.c.refresh(ctx) }
