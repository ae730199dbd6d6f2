package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/foodiex/go_checkout/internal/api"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleUpstreamError maps a failed backend call to an HTTP response.
func handleUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "backend temporarily unavailable")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		respondError(w, http.StatusGatewayTimeout, "timeout", "backend request timed out")
		return
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		respondError(w, http.StatusBadGateway, "bad_gateway", "backend request failed")
		return
	}

	var httpStatus int
	var code string

	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case http.StatusUnauthorized:
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case http.StatusForbidden:
		httpStatus = http.StatusForbidden
		code = "permission_denied"
	case http.StatusNotFound:
		httpStatus = http.StatusNotFound
		code = "not_found"
	case http.StatusConflict:
		httpStatus = http.StatusConflict
		code = "conflict"
	case http.StatusTooManyRequests:
		httpStatus = http.StatusTooManyRequests
		code = "rate_limit_exceeded"
	default:
		httpStatus = http.StatusBadGateway
		code = "bad_gateway"
	}

	message := apiErr.Message
	if message == "" {
		message = "backend request failed"
	}
	respondError(w, httpStatus, code, message)
}
