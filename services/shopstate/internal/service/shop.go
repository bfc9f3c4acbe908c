package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/pkg/logger"
	"github.com/maysa/storefront/services/shopstate/internal/catalog"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
	"github.com/maysa/storefront/services/shopstate/internal/repository"
	"github.com/maysa/storefront/services/shopstate/internal/store"
)

// Notifier hands out a store subscriber for one session.
type Notifier interface {
	Subscriber(sessionID string) store.Subscriber
}

// Options holds the tunables of a ShopService.
type Options struct {
	RecentlyViewedLimit int
	ShareOrigin         string
}

// Result reports how a mutation landed. Warning is non-empty when the change
// was applied but could not be persisted.
type Result struct {
	Changed bool   `json:"changed"`
	Warning string `json:"warning,omitempty"`
}

func resultOf(outcomes ...store.Outcome) Result {
	var r Result
	var warnings []error
	for _, o := range outcomes {
		r.Changed = r.Changed || o.Changed
		if o.Warning != nil {
			warnings = append(warnings, o.Warning)
		}
	}
	if err := errors.Join(warnings...); err != nil {
		r.Warning = err.Error()
	}
	return r
}

// ShopService implements the shopping-state operations of a session on top
// of the four stores.
type ShopService struct {
	slots    repository.SlotStore
	catalog  catalog.Reader
	notifier Notifier
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
}

// NewShopService creates a shop service. notifier may be nil.
func NewShopService(slots repository.SlotStore, reader catalog.Reader, notifier Notifier, logger *slog.Logger, opts Options) *ShopService {
	if opts.RecentlyViewedLimit <= 0 {
		opts.RecentlyViewedLimit = store.DefaultRecentlyViewedLimit
	}
	return &ShopService{
		slots:    slots,
		catalog:  reader,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Session is the shopping state of one session.
type Session struct {
	ID             string
	Cart           *store.CartStore
	Wishlist       *store.WishlistStore
	Comparison     *store.ComparisonStore
	RecentlyViewed *store.RecentlyViewedStore
}

// Open hydrates all four stores of sessionID.
func (s *ShopService) Open(ctx context.Context, sessionID string) (*Session, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return &Session{
		ID:             sessionID,
		Cart:           s.cart(ctx, sessionID),
		Wishlist:       s.wishlist(ctx, sessionID),
		Comparison:     s.comparison(ctx, sessionID),
		RecentlyViewed: s.recentlyViewed(ctx, sessionID),
	}, nil
}

// Summary is the badge counts shown in the storefront header.
type Summary struct {
	CartItems       int   `json:"cart_items"`
	CartTotal       int64 `json:"cart_total"`
	WishlistItems   int   `json:"wishlist_items"`
	ComparisonItems int   `json:"comparison_items"`
	RecentlyViewed  int   `json:"recently_viewed"`
}

// Summary returns the counts of every store of sessionID.
func (s *ShopService) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	sess, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		CartItems:       sess.Cart.TotalItems(),
		CartTotal:       sess.Cart.TotalPrice(),
		WishlistItems:   sess.Wishlist.TotalItems(),
		ComparisonItems: len(sess.Comparison.Items()),
		RecentlyViewed:  len(sess.RecentlyViewed.Items()),
	}, nil
}

func (s *ShopService) storeOptions(sessionID string) []store.Option {
	opts := []store.Option{store.WithLogger(s.logger.With(slog.String("session_id", sessionID)))}
	if s.notifier != nil {
		opts = append(opts, store.WithSubscriber(s.notifier.Subscriber(sessionID)))
	}
	return opts
}

func (s *ShopService) cart(ctx context.Context, sessionID string) *store.CartStore {
	slot := repository.Bind[domain.CartItem](s.slots, sessionID, repository.SlotCart)
	return store.NewCartStore(ctx, slot, s.storeOptions(sessionID)...)
}

func (s *ShopService) wishlist(ctx context.Context, sessionID string) *store.WishlistStore {
	slot := repository.Bind[domain.Product](s.slots, sessionID, repository.SlotWishlist)
	return store.NewWishlistStore(ctx, slot, s.storeOptions(sessionID)...)
}

func (s *ShopService) comparison(ctx context.Context, sessionID string) *store.ComparisonStore {
	slot := repository.Bind[domain.Product](s.slots, sessionID, repository.SlotComparison)
	return store.NewComparisonStore(ctx, slot, s.storeOptions(sessionID)...)
}

func (s *ShopService) recentlyViewed(ctx context.Context, sessionID string) *store.RecentlyViewedStore {
	slot := repository.Bind[domain.Product](s.slots, sessionID, repository.SlotRecentlyViewed)
	return store.NewRecentlyViewedStore(ctx, slot, s.opts.RecentlyViewedLimit, s.storeOptions(sessionID)...)
}

// product resolves id through the catalog.
func (s *ShopService) product(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperrors.InvalidInput("product id is required")
	}
	return s.catalog.Product(ctx, id)
}

func (s *ShopService) logMutation(ctx context.Context, msg, sessionID string, r Result, attrs ...slog.Attr) {
	if !r.Changed {
		return
	}
	attrs = append(attrs, slog.String("session_id", sessionID))
	if r.Warning != "" {
		attrs = append(attrs, slog.String("warning", r.Warning))
	}
	logger.WithContext(ctx, s.logger).LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperrors.InvalidInput("session id is required")
	}
	return nil
}

func outOfStock(productID string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "OUT_OF_STOCK",
		Message: "product " + productID + " is out of stock",
		Status:  http.StatusConflict,
		Err:     apperrors.ErrConflict,
	}
}
