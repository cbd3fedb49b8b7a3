package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/acarrillo/tasknest/internal/models"
	pkghttp "github.com/acarrillo/tasknest/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing session claims in context
	UserContextKey contextKey = "user"
)

// Middleware is the auth gate: it extracts a session token from the request,
// validates it, and injects the resolved identity into the request context.
// Missing, malformed, tampered and expired tokens deliberately all map to the
// same 401 response so callers learn nothing about why verification failed.
// The gate never consults the login lockout tracker.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken returns the session token from the token cookie, falling back
// to an Authorization bearer header for non-browser clients.
func extractToken(r *http.Request) string {
	if token, err := GetSessionTokenCookie(r); err == nil && token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// GetUserFromContext extracts session claims from request context
func GetUserFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithUserContext returns a copy of the request carrying the given claims.
// Intended for handler tests that bypass the middleware.
func WithUserContext(r *http.Request, claims *models.SessionClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
}
