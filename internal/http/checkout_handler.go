package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/foodiex/go_checkout/internal/checkout"
	"github.com/foodiex/go_checkout/internal/domain"
)

type CheckoutHandler struct {
	manager *checkout.Manager
	timeout time.Duration
}

func NewCheckoutHandler(manager *checkout.Manager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		manager: manager,
		timeout: timeout,
	}
}

// CheckoutSessionDTO is the session as shown to the client. Payment details
// are reduced to the method discriminator; card and UPI fields never echo
// back out.
type CheckoutSessionDTO struct {
	ID              string                  `json:"id"`
	Step            domain.Step             `json:"step"`
	Address         *domain.ShippingAddress `json:"address,omitempty"`
	PaymentMethod   string                  `json:"payment_method,omitempty"`
	OrderID         string                  `json:"order_id,omitempty"`
	SubmissionError string                  `json:"submission_error,omitempty"`
	Submitting      bool                    `json:"submitting,omitempty"`
}

func sessionResponse(ctrl *checkout.Controller) CheckoutSessionDTO {
	state := ctrl.Session()
	dto := CheckoutSessionDTO{
		ID:              state.ID,
		Step:            state.Step,
		Address:         state.Address,
		OrderID:         state.OrderID,
		SubmissionError: state.SubmissionError,
		Submitting:      ctrl.InFlight(),
	}
	if state.Payment != nil {
		dto.PaymentMethod = string(state.Payment.Method)
	}
	return dto
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to check out")
		return
	}

	ctrl := h.manager.Begin(ident.UserID)
	respondJSON(w, http.StatusCreated, sessionResponse(ctrl))
}

// GET /api/v1/checkout
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to check out")
		return
	}

	ctrl, exists := h.manager.Get(ident.UserID)
	if !exists {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(ctrl))
}

// DELETE /api/v1/checkout
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to check out")
		return
	}

	h.manager.Discard(ident.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/checkout/shipping
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to check out")
		return
	}

	var addr domain.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ctrl := h.manager.Begin(ident.UserID)
	if err := ctrl.SubmitShipping(addr); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(ctrl))
}

// POST /api/v1/checkout/payment
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to check out")
		return
	}

	var sel domain.PaymentSelection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ctrl, exists := h.manager.Get(ident.UserID)
	if !exists {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	if err := ctrl.SubmitPayment(sel); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(ctrl))
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to check out")
		return
	}

	ctrl, exists := h.manager.Get(ident.UserID)
	if !exists {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	if err := ctrl.Back(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(ctrl))
}

// POST /api/v1/checkout/order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	credential := credentialFromContext(r.Context())

	// Unauthenticated callers with an in-progress checkout keep their data;
	// the controller refuses the submission and the session survives.
	userID := ident.UserID
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to place the order")
		return
	}

	ctrl, exists := h.manager.Get(userID)
	if !exists {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	if _, err := ctrl.PlaceOrder(ctx, ident, credential); err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse(ctrl))
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var validationErrs checkout.ValidationErrors
	if errors.As(err, &validationErrs) {
		respondJSON(w, http.StatusUnprocessableEntity, struct {
			Error  string                `json:"error"`
			Code   string                `json:"code"`
			Fields []checkout.FieldError `json:"fields"`
		}{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: validationErrs,
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrAuthenticationRequired):
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "log in to place the order",
			Code:    "login_required",
			Details: "/login",
		})
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", "operation not allowed at this step")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "order submission already in progress")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, context.Canceled):
		// The client went away; nothing useful to write.
	default:
		handleUpstreamError(w, err)
	}
}
