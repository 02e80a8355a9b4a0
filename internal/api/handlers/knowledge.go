package handlers

import (
	"context"
	"net/http"

	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/service"
)

type KnowledgeService interface {
	List(ctx context.Context, filters service.KnowledgeFilters) ([]service.KnowledgeEntry, error)
	Stats(ctx context.Context) (*service.KnowledgeStats, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type KnowledgeEntryResponse struct {
	Case *CaseResponse `json:"case"`
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.List(r.Context(), service.KnowledgeFilters{
		Category: q.Get("category"),
		Insurer:  q.Get("insurer"),
		Query:    q.Get("q"),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]KnowledgeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, KnowledgeEntryResponse{Case: caseToResponse(entry.Case)})
	}
	api.Success(w, http.StatusOK, responses)
}

type KnowledgeStatsResponse struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	ByInsurer  map[string]int `json:"by_insurer"`
}

func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, KnowledgeStatsResponse{
		Total:      stats.Total,
		ByCategory: stats.ByCategory,
		ByInsurer:  stats.ByInsurer,
	})
}
