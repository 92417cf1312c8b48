package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type TasteHandler struct {
	service domain.TasteService
	auth    Middleware
	logger  logger.Logger
}

func NewTasteHandler(service domain.TasteService, auth Middleware, logger logger.Logger) *TasteHandler {
	return &TasteHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *TasteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/taste/profile", chain(http.HandlerFunc(h.handleProfile), h.auth))
	mux.Handle("POST /api/taste/recommendations", chain(http.HandlerFunc(h.handleRecommend), h.auth))
	mux.Handle("GET /api/taste/recommendations", chain(http.HandlerFunc(h.handleRecommendations), h.auth))
}

func (h *TasteHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "taste.profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *TasteHandler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req domain.RecommendRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	recs, err := h.service.Recommend(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, "taste.recommend", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

func (h *TasteHandler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	recs, err := h.service.Recommendations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "taste.recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}
