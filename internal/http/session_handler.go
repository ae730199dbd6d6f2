package http

import (
	"context"
	"net/http"
	"time"

	"github.com/foodiex/go_checkout/internal/api"
	"github.com/foodiex/go_checkout/internal/session"
)

type SessionHandler struct {
	provider *session.Provider
	auth     *api.AuthAPI
	timeout  time.Duration
}

func NewSessionHandler(provider *session.Provider, auth *api.AuthAPI, timeout time.Duration) *SessionHandler {
	return &SessionHandler{
		provider: provider,
		auth:     auth,
		timeout:  timeout,
	}
}

type SessionResponseDTO struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role"`
}

// GET /api/v1/session
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	respondJSON(w, http.StatusOK, SessionResponseDTO{
		Authenticated: ident.Authenticated(),
		UserID:        ident.UserID,
		Name:          ident.Name,
		Role:          string(ident.Role),
	})
}

// POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	credential := credentialFromContext(r.Context())
	if credential != "" {
		h.provider.Logout(credential)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/profile
func (h *SessionHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident := identityFromContext(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, "login_required", "log in to view your profile")
		return
	}

	profile, err := h.auth.Profile(ctx, credentialFromContext(r.Context()))
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
