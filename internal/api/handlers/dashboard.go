package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/service"
)

type DashboardService interface {
	Stats(ctx context.Context, requester *domain.User, filters service.StatsFilters) (*service.DashboardStats, error)
	Charts(ctx context.Context, from, to time.Time, status domain.CaseStatus) ([]service.DayCount, error)
	RecurrentCategories(ctx context.Context) ([]service.RecurrentCategory, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

type DashboardStatsResponse struct {
	Total          int             `json:"total"`
	ByStatus       map[string]int  `json:"by_status"`
	ByInsurer      map[string]int  `json:"by_insurer"`
	CompletionRate float64         `json:"completion_rate"`
	RecentCases    []*CaseResponse `json:"recent_cases"`
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filters := service.StatsFilters{Insurer: q.Get("insurer")}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		filters.Since = &from
	}

	stats, err := h.svc.Stats(r.Context(), user, filters)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}

	recent := make([]*CaseResponse, 0, len(stats.RecentCases))
	for _, c := range stats.RecentCases {
		recent = append(recent, caseToResponse(c))
	}

	api.Success(w, http.StatusOK, DashboardStatsResponse{
		Total:          stats.Total,
		ByStatus:       byStatus,
		ByInsurer:      stats.ByInsurer,
		CompletionRate: stats.CompletionRate,
		RecentCases:    recent,
	})
}

type DayCountResponse struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to time.Time
	if parsed, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		from = parsed
	}
	if parsed, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		to = parsed
	}

	series, err := h.svc.Charts(r.Context(), from, to, domain.CaseStatus(q.Get("status")))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]DayCountResponse, 0, len(series))
	for _, dc := range series {
		responses = append(responses, DayCountResponse{Day: dc.Day, Count: dc.Count})
	}
	api.Success(w, http.StatusOK, responses)
}

type RecurrentCategoryResponse struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Suggestion string  `json:"suggestion"`
}

func (h *DashboardHandler) Recurrent(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.RecurrentCategories(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]RecurrentCategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, RecurrentCategoryResponse{
			Category:   c.Category,
			Count:      c.Count,
			Percentage: c.Percentage,
			Suggestion: c.Suggestion,
		})
	}
	api.Success(w, http.StatusOK, responses)
}
