package http

import (
	"encoding/json"
	"io"
	"net/http"

	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// SupabaseWebhookHandler receives Supabase Auth hooks for users created
// outside the Firebase bridge (email signups, dashboard invites).
type SupabaseWebhookHandler struct {
	bridge domain.AuthBridgeService
	secret string
	logger logger.Logger
}

// NewSupabaseWebhookHandler creates a new Supabase webhook handler. secret is
// the "v1,whsec_..." hook secret; the route is not registered without it.
func NewSupabaseWebhookHandler(bridge domain.AuthBridgeService, secret string, logger logger.Logger) *SupabaseWebhookHandler {
	return &SupabaseWebhookHandler{
		bridge: bridge,
		secret: secret,
		logger: logger,
	}
}

// RegisterRoutes registers the Supabase webhook HTTP endpoints
func (h *SupabaseWebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	if h.secret == "" {
		h.logger.Warn("SUPABASE_AUTH_HOOK_SECRET not set, auth hook endpoint disabled")
		return
	}
	mux.HandleFunc("POST /webhooks/supabase/user-created", h.handleUserCreated)
}

type userCreatedPayload struct {
	User domain.AuthUser `json:"user"`
}

// hookSecret strips the "v1," prefix Supabase shows in its dashboard.
func hookSecret(secret string) string {
	if len(secret) > 3 && secret[:3] == "v1," {
		return secret[3:]
	}
	return secret
}

func (h *SupabaseWebhookHandler) handleUserCreated(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	wh, err := svix.NewWebhook(hookSecret(h.secret))
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Invalid Supabase hook secret")
		WriteJSONError(w, "Webhook verification is misconfigured", http.StatusInternalServerError)
		return
	}
	if err := wh.Verify(body, r.Header); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Rejected Supabase hook with invalid signature")
		WriteJSONError(w, "Invalid webhook signature", http.StatusUnauthorized)
		return
	}

	var payload userCreatedPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.User.ID == "" {
		WriteJSONError(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}

	// Provisioning failures must not block the signup in Supabase.
	if _, err := h.bridge.MirrorAuthUser(r.Context(), payload.User); err != nil {
		h.logger.WithField("error", err.Error()).
			WithField("user_id", payload.User.ID).
			Error("Failed to mirror Supabase user, returning success to not block user creation")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{})
}
