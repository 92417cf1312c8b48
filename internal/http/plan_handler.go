package http

import (
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// PlanHandler lists the plans shown on the pricing page. It is public.
type PlanHandler struct {
	service domain.PlanService
	logger  logger.Logger
}

func NewPlanHandler(service domain.PlanService, logger logger.Logger) *PlanHandler {
	return &PlanHandler{
		service: service,
		logger:  logger,
	}
}

func (h *PlanHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/plans", h.handleList)
}

func (h *PlanHandler) handleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "plans.list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}
