package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/http/middleware"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// requireUserID returns the authenticated user id or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		WriteJSONError(w, "Authentication required", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// AuthHandler serves the Firebase to Supabase token exchange.
type AuthHandler struct {
	bridge    domain.AuthBridgeService
	rateLimit Middleware
	logger    logger.Logger
}

func NewAuthHandler(bridge domain.AuthBridgeService, rateLimit Middleware, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		bridge:    bridge,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/auth/firebase", chain(http.HandlerFunc(h.handleFirebaseExchange), h.rateLimit))
}

func (h *AuthHandler) handleFirebaseExchange(w http.ResponseWriter, r *http.Request) {
	var req domain.FirebaseExchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.bridge.ExchangeFirebaseToken(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, "auth.firebase", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
