package store

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

func cartItemID(it domain.CartItem) string { return it.Product.ID }

func normalizeCart(items []domain.CartItem) []domain.CartItem {
	items = dedupe(items, cartItemID)
	out := items[:0]
	for _, it := range items {
		if it.Quantity >= 1 {
			out = append(out, it)
		}
	}
	return out
}

// CartStore holds cart lines. Prices are the snapshot taken when a product
// was last added; stock is not checked here.
type CartStore struct {
	c *collection[domain.CartItem]
}

// NewCartStore hydrates a cart from slot.
func NewCartStore(ctx context.Context, slot Slot[domain.CartItem], opts ...Option) *CartStore {
	return &CartStore{c: newCollection(ctx, NameCart, slot, normalizeCart, opts)}
}

// Add adds quantity units of p. Re-adding a product increments its quantity
// and refreshes the stored snapshot.
func (s *CartStore) Add(ctx context.Context, p domain.Product, quantity int) (Outcome, error) {
	if quantity < 1 {
		return Outcome{}, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > domain.MaxQuantityPerItem {
		return Outcome{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", domain.MaxQuantityPerItem))
	}
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}

	return s.c.mutate(ctx, ActionAdd, func(items []domain.CartItem) (edit[domain.CartItem], error) {
		if i := indexOf(items, p.ID, cartItemID); i >= 0 {
			total := items[i].Quantity + quantity
			if total > domain.MaxQuantityPerItem {
				return edit[domain.CartItem]{}, apperrors.InvalidInput(
					fmt.Sprintf("quantity for product %s would be %d, maximum is %d", p.ID, total, domain.MaxQuantityPerItem))
			}
			items[i] = domain.CartItem{Product: p, Quantity: total}
			return edit[domain.CartItem]{
				items:   items,
				change:  Change{ProductID: p.ID, Quantity: total},
				changed: true,
			}, nil
		}

		if len(items) >= domain.MaxItemsPerCart {
			return edit[domain.CartItem]{}, apperrors.InvalidInput(
				fmt.Sprintf("cart holds at most %d different products", domain.MaxItemsPerCart))
		}
		return edit[domain.CartItem]{
			items:   append(items, domain.CartItem{Product: p, Quantity: quantity}),
			change:  Change{ProductID: p.ID, Quantity: quantity},
			changed: true,
		}, nil
	})
}

// Remove deletes the line for productID. Removing an absent product is a no-op.
func (s *CartStore) Remove(ctx context.Context, productID string) (Outcome, error) {
	if err := requireID(productID); err != nil {
		return Outcome{}, err
	}
	return s.c.mutate(ctx, ActionRemove, func(items []domain.CartItem) (edit[domain.CartItem], error) {
		return removeByID(items, productID, cartItemID), nil
	})
}

// UpdateQuantity sets the quantity of productID exactly. A quantity of zero or
// less removes the line. Absent products are a no-op.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) (Outcome, error) {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	if err := requireID(productID); err != nil {
		return Outcome{}, err
	}
	if quantity > domain.MaxQuantityPerItem {
		return Outcome{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", domain.MaxQuantityPerItem))
	}

	return s.c.mutate(ctx, ActionUpdateQuantity, func(items []domain.CartItem) (edit[domain.CartItem], error) {
		i := indexOf(items, productID, cartItemID)
		if i < 0 || items[i].Quantity == quantity {
			return edit[domain.CartItem]{}, nil
		}
		items[i].Quantity = quantity
		return edit[domain.CartItem]{
			items:   items,
			change:  Change{ProductID: productID, Quantity: quantity},
			changed: true,
		}, nil
	})
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) (Outcome, error) {
	return s.c.mutate(ctx, ActionClear, clearAll[domain.CartItem])
}

// Items returns the cart lines in insertion order.
func (s *CartStore) Items() []domain.CartItem { return s.c.snapshot() }

// Get returns the line for productID.
func (s *CartStore) Get(productID string) (domain.CartItem, bool) {
	items := s.c.snapshot()
	if i := indexOf(items, productID, cartItemID); i >= 0 {
		return items[i], true
	}
	return domain.CartItem{}, false
}

// TotalItems is the sum of quantities.
func (s *CartStore) TotalItems() int {
	n := 0
	for _, it := range s.c.snapshot() {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of snapshot price times quantity.
func (s *CartStore) TotalPrice() int64 {
	var total int64
	for _, it := range s.c.snapshot() {
		total += it.LineTotal()
	}
	return total
}

// Subscribe registers fn and returns a function that unregisters it.
func (s *CartStore) Subscribe(fn Subscriber) func() { return s.c.subscribe(fn) }

// Refresh reloads the cart from its slot.
func (s *CartStore) Refresh(ctx context.Context) error { return s.c.refresh(ctx) }

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInput("product id is required")
	}
	return nil
}

func removeByID[T any](items []T, id string, idOf func(T) string) edit[T] {
	i := indexOf(items, id, idOf)
	if i < 0 {
		return edit[T]{}
	}
	return edit[T]{
		items:   append(items[:i], items[i+1:]...),
		change:  Change{ProductID: id},
		changed: true,
	}
}

func clearAll[T any](items []T) (edit[T], error) {
	if len(items) == 0 {
		return edit[T]{}, nil
	}
	return edit[T]{items: nil, changed: true, clear: true}, nil
}
