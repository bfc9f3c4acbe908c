package service

import (
	"context"
	"log/slog"

	"github.com/maysa/storefront/services/shopstate/internal/domain"
	"github.com/maysa/storefront/services/shopstate/internal/store"
)

// AddToCartInput holds the parameters for adding a product to the cart.
type AddToCartInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityInput holds the new quantity of a cart line. Zero removes it.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart as rendered to shoppers.
type CartView struct {
	Items      []domain.CartLineView `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice int64                 `json:"total_price"`
}

func newCartView(c *store.CartStore) *CartView {
	items := c.Items()
	v := &CartView{Items: domain.NewCartLineViews(items)}
	for _, it := range items {
		v.TotalItems += it.Quantity
		v.TotalPrice += it.LineTotal()
	}
	return v
}

// CheckoutSummary prices the cart with the snapshot prices taken at add time.
type CheckoutSummary struct {
	Lines         []domain.CartLineView `json:"lines"`
	TotalItems    int                   `json:"total_items"`
	OriginalTotal int64                 `json:"original_total"`
	Savings       int64                 `json:"savings"`
	Subtotal      int64                 `json:"subtotal"`
}

// Cart returns the cart of sessionID.
func (s *ShopService) Cart(ctx context.Context, sessionID string) (*CartView, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return newCartView(s.cart(ctx, sessionID)), nil
}

// AddToCart resolves the product and adds it. Out-of-stock products are
// rejected here; the store itself does not look at stock.
func (s *ShopService) AddToCart(ctx context.Context, sessionID string, input AddToCartInput) (*CartView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	p, err := s.product(ctx, input.ProductID)
	if err != nil {
		return nil, Result{}, err
	}
	if !p.InStock {
		return nil, Result{}, outOfStock(p.ID)
	}

	c := s.cart(ctx, sessionID)
	out, err := c.Add(ctx, p, input.Quantity)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product added to cart", sessionID, r,
		slog.String("product_id", p.ID),
		slog.Int("quantity", input.Quantity),
	)
	return newCartView(c), r, nil
}

// UpdateCartQuantity sets the quantity of a cart line.
func (s *ShopService) UpdateCartQuantity(ctx context.Context, sessionID, productID string, quantity int) (*CartView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	c := s.cart(ctx, sessionID)
	out, err := c.UpdateQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "cart quantity updated", sessionID, r,
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return newCartView(c), r, nil
}

// RemoveFromCart deletes a cart line.
func (s *ShopService) RemoveFromCart(ctx context.Context, sessionID, productID string) (*CartView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	c := s.cart(ctx, sessionID)
	out, err := c.Remove(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product removed from cart", sessionID, r, slog.String("product_id", productID))
	return newCartView(c), r, nil
}

// ClearCart empties the cart.
func (s *ShopService) ClearCart(ctx context.Context, sessionID string) (*CartView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	c := s.cart(ctx, sessionID)
	out, err := c.Clear(ctx)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "cart cleared", sessionID, r)
	return newCartView(c), r, nil
}

// CheckoutSummary totals the cart of sessionID.
func (s *ShopService) CheckoutSummary(ctx context.Context, sessionID string) (*CheckoutSummary, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	items := s.cart(ctx, sessionID).Items()

	sum := &CheckoutSummary{Lines: domain.NewCartLineViews(items)}
	for _, it := range items {
		sum.TotalItems += it.Quantity
		sum.Subtotal += it.LineTotal()
		sum.Savings += it.LineSavings()
	}
	sum.OriginalTotal = sum.Subtotal + sum.Savings
	return sum, nil
}
