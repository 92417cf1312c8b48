package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type UserHandler struct {
	userService domain.UserServiceInterface
	auth        Middleware
	logger      logger.Logger
}

func NewUserHandler(userService domain.UserServiceInterface, auth Middleware, logger logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		auth:        auth,
		logger:      logger,
	}
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/user/me", chain(http.HandlerFunc(h.handleMe), h.auth))
	mux.Handle("PUT /api/user/profile", chain(http.HandlerFunc(h.handleUpdateProfile), h.auth))
	mux.Handle("GET /api/user/usage", chain(http.HandlerFunc(h.handleUsage), h.auth))
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	overview, err := h.userService.GetOverview(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "user.me", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, "user.profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.userService.GetUsage(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "user.usage", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
