package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type SettingsHandler struct {
	service domain.SettingsService
	auth    Middleware
	logger  logger.Logger
}

func NewSettingsHandler(service domain.SettingsService, auth Middleware, logger logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/settings", chain(http.HandlerFunc(h.handleGet), h.auth))
	mux.Handle("PUT /api/settings", chain(http.HandlerFunc(h.handleUpdate), h.auth))
}

func (h *SettingsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	prefs, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "settings.get", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *SettingsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req domain.UpdatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefs, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, "settings.update", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
