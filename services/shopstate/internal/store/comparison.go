package store

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

// MaxComparison is the number of products that can be compared side by side.
const MaxComparison = 4

// ErrComparisonFull is matched when adding to a full comparison.
var ErrComparisonFull = errors.New("comparison is full")

func comparisonFull() *apperrors.AppError {
	err := apperrors.LimitExceeded("COMPARISON_FULL",
		fmt.Sprintf("at most %d products can be compared", MaxComparison))
	err.Err = errors.Join(apperrors.ErrLimitExceeded, ErrComparisonFull)
	return err
}

func normalizeComparison(items []domain.Product) []domain.Product {
	items = dedupe(items, productKey)
	if len(items) > MaxComparison {
		items = items[:MaxComparison]
	}
	return items
}

// ComparisonStore is an insertion-ordered list of at most MaxComparison
// distinct products.
type ComparisonStore struct {
	c *collection[domain.Product]
}

// NewComparisonStore hydrates a comparison from slot.
func NewComparisonStore(ctx context.Context, slot Slot[domain.Product], opts ...Option) *ComparisonStore {
	return &ComparisonStore{c: newCollection(ctx, NameComparison, slot, normalizeComparison, opts)}
}

// Add appends p. It is rejected when p is already compared or the list is full.
func (s *ComparisonStore) Add(ctx context.Context, p domain.Product) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionAdd, func(items []domain.Product) (edit[domain.Product], error) {
		if indexOf(items, p.ID, productKey) >= 0 {
			return edit[domain.Product]{}, apperrors.AlreadyExists("comparison entry", "product_id", p.ID)
		}
		if len(items) >= MaxComparison {
			return edit[domain.Product]{}, comparisonFull()
		}
		return edit[domain.Product]{
			items:   append(items, p),
			change:  Change{ProductID: p.ID},
			changed: true,
		}, nil
	})
}

// Remove deletes productID, keeping the order of the rest.
func (s *ComparisonStore) Remove(ctx context.Context, productID string) (Outcome, error) {
	if err := requireID(productID); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionRemove, func(items []domain.Product) (edit[domain.Product], error) {
		return removeByID(items, productID, productKey), nil
	})
}

// Clear empties the comparison.
func (s *ComparisonStore) Clear(ctx context.Context) (Outcome, error) {
	return s.c.mutate(ctx, ActionClear, clearAll[domain.Product])
}

// Contains reports whether productID is being compared.
func (s *ComparisonStore) Contains(productID string) bool {
	return indexOf(s.c.snapshot(), productID, productKey) >= 0
}

// CanAddMore reports whether another product fits.
func (s *ComparisonStore) CanAddMore() bool { return len(s.c.snapshot()) < MaxComparison }

// Items returns the compared products in insertion order.
func (s *ComparisonStore) Items() []domain.Product { return s.c.snapshot() }

// Subscribe registers fn and returns a function that unregisters it.
func (s *ComparisonStore) Subscribe(fn Subscriber) func() { return s.c.subscribe(fn) }

// Refresh reloads the comparison from its slot.
func (s *ComparisonStore) Refresh(ctx context.Context) error { return s.c.refresh(ctx) }
