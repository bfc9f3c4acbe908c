package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maysa/storefront/pkg/health"
	"github.com/maysa/storefront/pkg/middleware"
	"github.com/maysa/storefront/services/shopstate/internal/service"
)

const serviceName = "shopstate"

// RouterConfig holds the HTTP tunables of the router.
type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// NewRouter creates a chi router with all shopstate routes registered.
func NewRouter(svc *service.ShopService, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins...)))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewShopHandler(svc, logger)

	r.Route("/api/v1/shop", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(ContentTypeJSON)

		// Shared wishlists are public: the recipient has a different session.
		r.Get("/wishlist/shared/{token}", h.GetSharedWishlist)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Get("/", h.GetSummary)

			r.Get("/cart", h.GetCart)
			r.Delete("/cart", h.ClearCart)
			r.Get("/cart/checkout", h.GetCheckoutSummary)
			r.Post("/cart/items", h.AddCartItem)
			r.Put("/cart/items/{productId}", h.UpdateCartItem)
			r.Delete("/cart/items/{productId}", h.RemoveCartItem)

			r.Get("/wishlist", h.GetWishlist)
			r.Delete("/wishlist", h.ClearWishlist)
			r.Post("/wishlist/share", h.ShareWishlist)
			r.Post("/wishlist/shared/{token}/import", h.ImportSharedWishlist)
			r.Get("/wishlist/{productId}", h.GetWishlistItem)
			r.Post("/wishlist/{productId}", h.AddWishlistItem)
			r.Delete("/wishlist/{productId}", h.RemoveWishlistItem)
			r.Post("/wishlist/{productId}/move-to-cart", h.MoveToCart)

			r.Get("/comparison", h.GetComparison)
			r.Delete("/comparison", h.ClearComparison)
			r.Post("/comparison/{productId}", h.AddComparisonItem)
			r.Delete("/comparison/{productId}", h.RemoveComparisonItem)

			r.Get("/recently-viewed", h.GetRecentlyViewed)
			r.Delete("/recently-viewed", h.ClearRecentlyViewed)
			r.Post("/recently-viewed/{productId}", h.RecordView)
			r.Delete("/recently-viewed/{productId}", h.RemoveRecentlyViewed)
		})
	})

	return r
}
