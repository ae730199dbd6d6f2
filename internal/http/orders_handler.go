package http

import (
	"context"
	"net/http"
	"time"

	"github.com/foodiex/go_checkout/internal/api"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	orders  *api.OrderAPI
	timeout time.Duration
}

func NewOrdersHandler(orders *api.OrderAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to view orders")
		return
	}

	orders, err := h.orders.ListMine(ctx, credentialFromContext(r.Context()))
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to view orders")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	order, err := h.orders.Get(ctx, credentialFromContext(r.Context()), orderID)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
