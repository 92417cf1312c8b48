package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

type LoreHandler struct {
	service   domain.LoreService
	auth      Middleware
	rateLimit Middleware
	logger    logger.Logger
}

func NewLoreHandler(service domain.LoreService, auth, rateLimit Middleware, logger logger.Logger) *LoreHandler {
	return &LoreHandler{
		service:   service,
		auth:      auth,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

func (h *LoreHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/lore/generate", chain(http.HandlerFunc(h.handleGenerate), h.auth, h.rateLimit))
	mux.Handle("GET /api/lore/history", chain(http.HandlerFunc(h.handleHistory), h.auth))
	mux.Handle("GET /api/lore/{id}", chain(http.HandlerFunc(h.handleGet), h.auth))
	mux.Handle("DELETE /api/lore/{id}", chain(http.HandlerFunc(h.handleDelete), h.auth))
}

func (h *LoreHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req domain.GenerateLoreRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, "lore.generate", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoreHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", domain.DefaultHistoryLimit)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	history, err := h.service.History(r.Context(), userID, domain.ListHistoryRequest{Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, h.logger, "lore.history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *LoreHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "lore.get", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *LoreHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, "lore.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
