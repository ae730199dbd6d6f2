package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/foodiex/go_checkout/internal/api"
	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/go-chi/chi/v5"
)

// OrderSnapshot is the poller's view of the admin order list.
type OrderSnapshot interface {
	Snapshot() ([]domain.Order, time.Time)
}

type AdminHandler struct {
	snapshot OrderSnapshot
	admin    *api.AdminAPI
	timeout  time.Duration
}

func NewAdminHandler(snapshot OrderSnapshot, admin *api.AdminAPI, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		snapshot: snapshot,
		admin:    admin,
		timeout:  timeout,
	}
}

type AdminOrdersResponseDTO struct {
	Orders    []domain.Order `json:"orders"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// GET /api/v1/admin/orders
//
// Served from the poller snapshot rather than proxying every request, so an
// admin dashboard refreshing aggressively doesn't hammer the backend.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.IsAdmin() {
		respondError(w, http.StatusForbidden, "permission_denied", "admin role required")
		return
	}

	orders, fetchedAt := h.snapshot.Snapshot()
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, AdminOrdersResponseDTO{Orders: orders, FetchedAt: fetchedAt})
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// PUT /api/v1/admin/orders/{order_id}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.IsAdmin() {
		respondError(w, http.StatusForbidden, "permission_denied", "admin role required")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "invalid_status", "status is required")
		return
	}

	if err := h.admin.UpdateOrderStatus(ctx, credentialFromContext(r.Context()), orderID, req.Status); err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
