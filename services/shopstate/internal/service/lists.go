package service

import (
	"context"
	"log/slog"

	"github.com/maysa/storefront/services/shopstate/internal/domain"
	"github.com/maysa/storefront/services/shopstate/internal/store"
)

// ComparisonView is the comparison tray.
type ComparisonView struct {
	Items      []domain.ProductView `json:"items"`
	Count      int                  `json:"count"`
	Max        int                  `json:"max"`
	CanAddMore bool                 `json:"can_add_more"`
}

func newComparisonView(c *store.ComparisonStore) *ComparisonView {
	items := c.Items()
	return &ComparisonView{
		Items:      domain.NewProductViews(items),
		Count:      len(items),
		Max:        store.MaxComparison,
		CanAddMore: len(items) < store.MaxComparison,
	}
}

// RecentlyViewedView lists recently viewed products, most recent first.
type RecentlyViewedView struct {
	Items []domain.ProductView `json:"items"`
	Limit int                  `json:"limit"`
}

func newRecentlyViewedView(rv *store.RecentlyViewedStore) *RecentlyViewedView {
	return &RecentlyViewedView{Items: domain.NewProductViews(rv.Items()), Limit: rv.Limit()}
}

// Comparison returns the comparison tray of sessionID.
func (s *ShopService) Comparison(ctx context.Context, sessionID string) (*ComparisonView, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return newComparisonView(s.comparison(ctx, sessionID)), nil
}

// AddToComparison resolves productID and adds it to the tray.
func (s *ShopService) AddToComparison(ctx context.Context, sessionID, productID string) (*ComparisonView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	c := s.comparison(ctx, sessionID)
	out, err := c.Add(ctx, p)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product added to comparison", sessionID, r, slog.String("product_id", p.ID))
	return newComparisonView(c), r, nil
}

// RemoveFromComparison removes productID from the tray.
func (s *ShopService) RemoveFromComparison(ctx context.Context, sessionID, productID string) (*ComparisonView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	c := s.comparison(ctx, sessionID)
	out, err := c.Remove(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product removed from comparison", sessionID, r, slog.String("product_id", productID))
	return newComparisonView(c), r, nil
}

// ClearComparison empties the tray.
func (s *ShopService) ClearComparison(ctx context.Context, sessionID string) (*ComparisonView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	c := s.comparison(ctx, sessionID)
	out, err := c.Clear(ctx)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "comparison cleared", sessionID, r)
	return newComparisonView(c), r, nil
}

// RecentlyViewed returns the recently viewed products of sessionID.
func (s *ShopService) RecentlyViewed(ctx context.Context, sessionID string) (*RecentlyViewedView, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return newRecentlyViewedView(s.recentlyViewed(ctx, sessionID)), nil
}

// RecordView records that productID was viewed.
func (s *ShopService) RecordView(ctx context.Context, sessionID, productID string) (*RecentlyViewedView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	rv := s.recentlyViewed(ctx, sessionID)
	out, err := rv.Add(ctx, p)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "product view recorded", sessionID, r, slog.String("product_id", p.ID))
	return newRecentlyViewedView(rv), r, nil
}

// RemoveRecentlyViewed forgets one viewed product.
func (s *ShopService) RemoveRecentlyViewed(ctx context.Context, sessionID, productID string) (*RecentlyViewedView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	rv := s.recentlyViewed(ctx, sessionID)
	out, err := rv.Remove(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "recently viewed product removed", sessionID, r, slog.String("product_id", productID))
	return newRecentlyViewedView(rv), r, nil
}

// ClearRecentlyViewed empties the recently viewed list.
func (s *ShopService) ClearRecentlyViewed(ctx context.Context, sessionID string) (*RecentlyViewedView, Result, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, Result{}, err
	}
	rv := s.recentlyViewed(ctx, sessionID)
	out, err := rv.Clear(ctx)
	if err != nil {
		return nil, Result{}, err
	}

	r := resultOf(out)
	s.logMutation(ctx, "recently viewed cleared", sessionID, r)
	return newRecentlyViewedView(rv), r, nil
}
