package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/foodiex/go_checkout/internal/api"
	"github.com/foodiex/go_checkout/internal/cart"
	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts    *cart.Service
	products ProductGetter
	timeout  time.Duration
}

// ProductGetter prices cart additions server-side; clients never supply a
// unit price.
type ProductGetter interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

func NewCartHandler(carts *cart.Service, products ProductGetter, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items     []domain.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

func cartResponse(c *domain.Cart) CartResponseDTO {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponseDTO{
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to use the cart")
		return
	}

	userCart, err := h.carts.Get(ctx, ident.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(userCart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to use the cart")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.products.Get(ctx, req.ProductID)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		handleUpstreamError(w, err)
		return
	}
	if !product.Available {
		respondError(w, http.StatusConflict, "product_unavailable", "product is not available")
		return
	}

	userCart, err := h.carts.AddItem(ctx, ident.UserID, domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  req.Quantity,
		ImageRef:  product.ImageRef,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(userCart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to use the cart")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Quantity zero (or less) removes the item, same as a DELETE.
	userCart, err := h.carts.SetQuantity(ctx, ident.UserID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "item_not_found", "product is not in the cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(userCart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to use the cart")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	userCart, err := h.carts.RemoveItem(ctx, ident.UserID, productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(userCart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to use the cart")
		return
	}

	if err := h.carts.Clear(ctx, ident.UserID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(&domain.Cart{UserID: ident.UserID}))
}
