package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/foodiex/go_checkout/internal/session"
	"github.com/google/uuid"
)

type contextKey string

const (
	identityKey   contextKey = "identity"
	credentialKey contextKey = "credential"
	requestIDKey  contextKey = "request_id"
)

// AuthMiddleware resolves the bearer credential to an Identity for every
// request. An absent or invalid token is not an error here; the caller is
// simply anonymous and the handlers decide what that means.
func AuthMiddleware(provider *session.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerToken(r)
			ident, err := provider.Identity(credential)
			if err != nil {
				ident = session.Anonymous
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			ctx = context.WithValue(ctx, credentialKey, credential)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func identityFromContext(ctx context.Context) session.Identity {
	if ident, ok := ctx.Value(identityKey).(session.Identity); ok {
		return ident
	}
	return session.Anonymous
}

func credentialFromContext(ctx context.Context) string {
	if credential, ok := ctx.Value(credentialKey).(string); ok {
		return credential
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
