package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
	"github.com/maysa/storefront/services/shopstate/internal/store"
)

// ProductList is an ordered list of products as rendered to shoppers.
type ProductList struct {
	Items []domain.ProductView `json:"items"`
	Count int                  `json:"count"`
}

func newProductList(products []domain.Product) *ProductList {
	return &ProductList{Items: domain.NewProductViews(products), Count: len(products)}
}

// ShareLink is a shareable wishlist link.
type ShareLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// SharedWishlist is a decoded share token with its products resolved.
// Missing lists ids the catalog no longer knows.
type SharedWishlist struct {
	Items     []domain.ProductView `json:"items"`
	Missing   []string             `json:"missing,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// Wishlist returns the wishlist of sessionID.
func (s *ShopService) Wishlist(ctx context.Context, sessionID string) (*ProductList, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return newProductList(s.wishlist(ctx, sessionID).Items()), nil
}

// InWishlist reports whether productID is wishlisted.
func (s *ShopService) InWishlist(ctx context.Context, sessionID, productID string) (bool, error) {
	if err := requireSession(sessionID); err != nil {
		return false, err
	}
	return s.wishlist(ctx, sessionID).Contains(productID), nil
}

// AddToWishlist resolves productID and wishlists it. Adding twice is a no-op.
func (s *ShopService) AddToWishlist(ctx context.Context, sessionID, productID string) (*ProductList, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	w := s.wishlist(ctx, sessionID)
	out, err := w.Add(ctx, p)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product added to wishlist", sessionID, r, slog.String("product_id", p.ID))
	return newProductList(w.Items()), r, nil
}

// RemoveFromWishlist removes productID from the wishlist.
func (s *ShopService) RemoveFromWishlist(ctx context.Context, sessionID, productID string) (*ProductList, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	w := s.wishlist(ctx, sessionID)
	out, err := w.Remove(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product removed from wishlist", sessionID, r, slog.String("product_id", productID))
	return newProductList(w.Items()), r, nil
}

// ClearWishlist empties the wishlist.
func (s *ShopService) ClearWishlist(ctx context.Context, sessionID string) (*ProductList, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	w := s.wishlist(ctx, sessionID)
	out, err := w.Clear(ctx)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "wishlist cleared", sessionID, r)
	return newProductList(w.Items()), r, nil
}

// MoveToCart adds one unit of a wishlisted product to the cart and then
// removes it from the wishlist. Stock is checked against the catalog.
func (s *ShopService) MoveToCart(ctx context.Context, sessionID, productID string) (*CartView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	w := s.wishlist(ctx, sessionID)
	if !w.Contains(productID) {
		return nil, Result{}, apperrors.NotFound("wishlist item", productID)
	}

	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}
	if !p.InStock {
		return nil, Result{}, outOfStock(p.ID)
	}

	c := s.cart(ctx, sessionID)
	added, err := c.Add(ctx, p, 1)
	if err != nil {
		return nil, Result{}, err
	}
	removed, err := w.Remove(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(added, removed)
	s.logMutation(ctx, "wishlist item moved to cart", sessionID, r, slog.String("product_id", productID))
	return newCartView(c), r, nil
}

// ShareWishlist encodes the wishlist ids into a share link.
func (s *ShopService) ShareWishlist(ctx context.Context, sessionID string) (*ShareLink, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	ids := s.wishlist(ctx, sessionID).IDs()

	token, err := domain.EncodeShareToken(ids, s.now())
	if err != nil {
		return nil, err
	}
	return &ShareLink{
		Token: token,
		URL:   domain.ShareURL(s.opts.ShareOrigin, token),
		Count: len(ids),
	}, nil
}

// ResolveSharedWishlist decodes token and resolves its ids in order. Ids the
// catalog no longer knows are skipped and reported in Missing; any other
// catalog failure aborts.
func (s *ShopService) ResolveSharedWishlist(ctx context.Context, token string) (*SharedWishlist, error) {
	data, err := domain.DecodeShareToken(token)
	if err != nil {
		return nil, err
	}

	products, missing, err := s.resolveAll(ctx, data.IDs)
	if err != nil {
		return nil, err
	}
	return &SharedWishlist{
		Items:     domain.NewProductViews(products),
		Missing:   missing,
		CreatedAt: data.CreatedAt,
	}, nil
}

// ImportSharedWishlist adds every resolvable product of token to the
// wishlist of sessionID. Products already wishlisted are left alone.
func (s *ShopService) ImportSharedWishlist(ctx context.Context, sessionID, token string) (*ProductList, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	data, err := domain.DecodeShareToken(token)
	if err != nil {
		return nil, Result{}, err
	}
	products, _, err := s.resolveAll(ctx, data.IDs)
	if err != nil {
		return nil, Result{}, err
	}

	w := s.wishlist(ctx, sessionID)
	outcomes := make([]store.Outcome, 0, len(products))
	for _, p := range products {
		out, err := w.Add(ctx, p)
		if err != nil {
			return nil, Result{}, err
		}
		outcomes = append(outcomes, out)
	}

	r := resultOf(outcomes...)
	s.logMutation(ctx, "shared wishlist imported", sessionID, r, slog.Int("products", len(products)))
	return newProductList(w.Items()), r, nil
}

func (s *ShopService) resolveAll(ctx context.Context, ids []string) ([]domain.Product, []string, error) {
	products := make([]domain.Product, 0, len(ids))
	var missing []string
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, err := s.catalog.Product(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return nil, nil, err
		}
		products = append(products, p)
	}
	return products, missing, nil
}
