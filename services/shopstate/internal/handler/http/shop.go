package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maysa/storefront/pkg/httputil"
	"github.com/maysa/storefront/pkg/validator"
	"github.com/maysa/storefront/services/shopstate/internal/service"
)

// ShopHandler handles HTTP requests for the shopping-state endpoints.
type ShopHandler struct {
	service *service.ShopService
	logger  *slog.Logger
}

// NewShopHandler creates a new shop HTTP handler.
func NewShopHandler(svc *service.ShopService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddCartItemRequest is the JSON body of POST /cart/items. Quantity defaults to 1.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateCartItemRequest is the JSON body of PUT /cart/items/{productId}.
// A quantity of zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// --- Responses ---

// mutationResponse is the data of every mutating endpoint: the new state of
// the affected store plus how the mutation landed.
type mutationResponse struct {
	State any `json:"state"`
	service.Result
}

type containsResponse struct {
	ProductID string `json:"product_id"`
	InList    bool   `json:"in_wishlist"`
}

func (h *ShopHandler) writeMutation(w http.ResponseWriter, r *http.Request, state any, res service.Result, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, mutationResponse{State: state, Result: res})
}

func (h *ShopHandler) writeState(w http.ResponseWriter, r *http.Request, state any, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, state)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// --- Summary ---

// GetSummary handles GET /api/v1/shop
func (h *ShopHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), sessionFromContext(r.Context()))
	h.writeState(w, r, sum, err)
}

// --- Cart ---

// GetCart handles GET /api/v1/shop/cart
func (h *ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Cart(r.Context(), sessionFromContext(r.Context()))
	h.writeState(w, r, cart, err)
}

// GetCheckoutSummary handles GET /api/v1/shop/cart/checkout
func (h *ShopHandler) GetCheckoutSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.CheckoutSummary(r.Context(), sessionFromContext(r.Context()))
	h.writeState(w, r, sum, err)
}

// AddCartItem handles POST /api/v1/shop/cart/items
func (h *ShopHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, res, err := h.service.AddToCart(r.Context(), sessionFromContext(r.Context()), service.AddToCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	h.writeMutation(w, r, cart, res, err)
}

// UpdateCartItem handles PUT /api/v1/shop/cart/items/{productId}
func (h *ShopHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, res, err := h.service.UpdateCartQuantity(r.Context(), sessionFromContext(r.Context()),
		chi.URLParam(r, "productId"), *req.Quantity)
	h.writeMutation(w, r, cart, res, err)
}

// RemoveCartItem handles DELETE /api/v1/shop/cart/items/{productId}
func (h *ShopHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, res, err := h.service.RemoveFromCart(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, cart, res, err)
}

// ClearCart handles DELETE /api/v1/shop/cart
func (h *ShopHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, res, err := h.service.ClearCart(r.Context(), sessionFromContext(r.Context()))
	h.writeMutation(w, r, cart, res, err)
}

// --- Wishlist ---

// GetWishlist handles GET /api/v1/shop/wishlist
func (h *ShopHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Wishlist(r.Context(), sessionFromContext(r.Context()))
	h.writeState(w, r, list, err)
}

// GetWishlistItem handles GET /api/v1/shop/wishlist/{productId}
func (h *ShopHandler) GetWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	in, err := h.service.InWishlist(r.Context(), sessionFromContext(r.Context()), productID)
	h.writeState(w, r, containsResponse{ProductID: productID, InList: in}, err)
}

// AddWishlistItem handles POST /api/v1/shop/wishlist/{productId}
func (h *ShopHandler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	list, res, err := h.service.AddToWishlist(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, list, res, err)
}

// RemoveWishlistItem handles DELETE /api/v1/shop/wishlist/{productId}
func (h *ShopHandler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	list, res, err := h.service.RemoveFromWishlist(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, list, res, err)
}

// ClearWishlist handles DELETE /api/v1/shop/wishlist
func (h *ShopHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	list, res, err := h.service.ClearWishlist(r.Context(), sessionFromContext(r.Context()))
	h.writeMutation(w, r, list, res, err)
}

// MoveToCart handles POST /api/v1/shop/wishlist/{productId}/move-to-cart
func (h *ShopHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	cart, res, err := h.service.MoveToCart(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, cart, res, err)
}

// ShareWishlist handles POST /api/v1/shop/wishlist/share
func (h *ShopHandler) ShareWishlist(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ShareWishlist(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, link)
}

// GetSharedWishlist handles GET /api/v1/shop/wishlist/shared/{token}
func (h *ShopHandler) GetSharedWishlist(w http.ResponseWriter, r *http.Request) {
	shared, err := h.service.ResolveSharedWishlist(r.Context(), chi.URLParam(r, "token"))
	h.writeState(w, r, shared, err)
}

// ImportSharedWishlist handles POST /api/v1/shop/wishlist/shared/{token}/import
func (h *ShopHandler) ImportSharedWishlist(w http.ResponseWriter, r *http.Request) {
	list, res, err := h.service.ImportSharedWishlist(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "token"))
	h.writeMutation(w, r, list, res, err)
}

// --- Comparison ---

// GetComparison handles GET /api/v1/shop/comparison
func (h *ShopHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Comparison(r.Context(), sessionFromContext(r.Context()))
	h.writeState(w, r, view, err)
}

// AddComparisonItem handles POST /api/v1/shop/comparison/{productId}
func (h *ShopHandler) AddComparisonItem(w http.ResponseWriter, r *http.Request) {
	view, res, err := h.service.AddToComparison(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, view, res, err)
}

// RemoveComparisonItem handles DELETE /api/v1/shop/comparison/{productId}
func (h *ShopHandler) RemoveComparisonItem(w http.ResponseWriter, r *http.Request) {
	view, res, err := h.service.RemoveFromComparison(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, view, res, err)
}

// ClearComparison handles DELETE /api/v1/shop/comparison
func (h *ShopHandler) ClearComparison(w http.ResponseWriter, r *http.Request) {
	view, res, err := h.service.ClearComparison(r.Context(), sessionFromContext(r.Context()))
	h.writeMutation(w, r, view, res, err)
}

// --- Recently viewed ---

// GetRecentlyViewed handles GET /api/v1/shop/recently-viewed
func (h *ShopHandler) GetRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RecentlyViewed(r.Context(), sessionFromContext(r.Context()))
	h.writeState(w, r, view, err)
}

// RecordView handles POST /api/v1/shop/recently-viewed/{productId}
func (h *ShopHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	view, res, err := h.service.RecordView(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, view, res, err)
}

// RemoveRecentlyViewed handles DELETE /api/v1/shop/recently-viewed/{productId}
func (h *ShopHandler) RemoveRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	view, res, err := h.service.RemoveRecentlyViewed(r.Context(), sessionFromContext(r.Context()), chi.URLParam(r, "productId"))
	h.writeMutation(w, r, view, res, err)
}

// ClearRecentlyViewed handles DELETE /api/v1/shop/recently-viewed
func (h *ShopHandler) ClearRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	view, res, err := h.service.ClearRecentlyViewed(r.Context(), sessionFromContext(r.Context()))
	h.writeMutation(w, r, view, res, err)
}
