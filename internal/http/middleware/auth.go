package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// Key for storing the verified claims in context
type contextKey string

const claimsKey contextKey = "access_claims"

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *domain.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*domain.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.AccessClaims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return ""
}

// AuthMiddleware verifies Supabase access tokens
type AuthMiddleware struct {
	verifier domain.AccessTokenVerifier
	logger   logger.Logger
}

// NewAuthMiddleware creates a new auth middleware with the given verifier
func NewAuthMiddleware(verifier domain.AccessTokenVerifier, logger logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// claims in the request context
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeError(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := am.verifier.VerifyAccessToken(r.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			var unauthorized *domain.ErrUnauthorized
			if errors.As(err, &unauthorized) {
				writeError(w, unauthorized.Message, http.StatusUnauthorized)
				return
			}
			am.logger.WithField("error", err.Error()).Error("Access token verification failed")
			writeError(w, "Failed to verify access token", http.StatusBadGateway)
			return
		}
		if claims.UserID == "" {
			writeError(w, "Token has no subject", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
