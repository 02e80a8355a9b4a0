package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/pagination"
	"github.com/safe2go/helpdesk/internal/service"
)

type CaseService interface {
	Create(ctx context.Context, input service.CreateCaseInput) (*domain.Case, error)
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context, requester *domain.User, filters service.CaseFilters, page pagination.Page) (*service.CasePage, error)
	Update(ctx context.Context, id string, input service.UpdateCaseInput, updatedBy *domain.User) (*domain.Case, error)
	Delete(ctx context.Context, id string) error
}

type RecommendationService interface {
	Recommend(ctx context.Context, targetCaseID string, limit int) ([]service.Recommendation, error)
}

type CaseHandler struct {
	svc       CaseService
	recommend RecommendationService
}

func NewCaseHandler(svc CaseService, recommend RecommendationService) *CaseHandler {
	return &CaseHandler{svc: svc, recommend: recommend}
}

type CreateCaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Responsible string `json:"responsible"`
	JiraID      string `json:"jira_id"`
}

type CaseResponse struct {
	ID            string   `json:"id"`
	JiraID        string   `json:"jira_id,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Responsible   string   `json:"responsible,omitempty"`
	CreatorID     string   `json:"creator_id,omitempty"`
	CreatorName   string   `json:"creator_name,omitempty"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Insurer       string   `json:"insurer,omitempty"`
	Category      string   `json:"category,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	OpenedAt      string   `json:"opened_at"`
	ClosedAt      string   `json:"closed_at,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	Solution      string   `json:"solution,omitempty"`
	SolutionTitle string   `json:"solution_title,omitempty"`
	SolvedBy      string   `json:"solved_by,omitempty"`
	SolvedAt      string   `json:"solved_at,omitempty"`
}

func caseToResponse(c *domain.Case) *CaseResponse {
	resp := &CaseResponse{
		ID:            c.ID,
		JiraID:        c.JiraID,
		Title:         c.Title,
		Description:   c.Description,
		Responsible:   c.Responsible,
		CreatorID:     c.CreatorID,
		CreatorName:   c.CreatorName,
		Status:        string(c.Status),
		Priority:      string(c.Priority),
		Insurer:       c.Insurer,
		Category:      c.Category,
		Keywords:      c.Keywords,
		OpenedAt:      c.OpenedAt.Format(time.RFC3339),
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
		Solution:      c.Solution,
		SolutionTitle: c.SolutionTitle,
		SolvedBy:      c.SolvedBy,
	}
	if c.ClosedAt != nil {
		resp.ClosedAt = c.ClosedAt.Format(time.RFC3339)
	}
	if c.SolvedAt != nil {
		resp.SolvedAt = c.SolvedAt.Format(time.RFC3339)
	}
	return resp
}

type CaseListResponse struct {
	Items      []*CaseResponse `json:"items"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	c, err := h.svc.Create(r.Context(), service.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.CasePriority(req.Priority),
		Responsible: req.Responsible,
		JiraID:      req.JiraID,
		CreatorID:   user.ID,
		CreatorName: user.Name,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, caseToResponse(c))
}

func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filters := service.CaseFilters{
		Status:      domain.CaseStatus(q.Get("status")),
		Insurer:     q.Get("insurer"),
		Category:    q.Get("category"),
		Responsible: q.Get("responsible"),
	}
	if days, err := strconv.Atoi(q.Get("days")); err == nil && days > 0 {
		since := time.Now().UTC().AddDate(0, 0, -days)
		filters.Since = &since
	}

	page := pagination.Page{}
	page.Number, _ = strconv.Atoi(q.Get("page"))
	page.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	result, err := h.svc.List(r.Context(), user, filters, page)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*CaseResponse, 0, len(result.Items))
	for _, c := range result.Items {
		items = append(items, caseToResponse(c))
	}

	api.Success(w, http.StatusOK, CaseListResponse{
		Items:      items,
		Page:       result.Meta.Page,
		PerPage:    result.Meta.PerPage,
		Total:      result.Meta.Total,
		TotalPages: result.Meta.TotalPages,
	})
}

func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")
	c, err := h.svc.GetByID(r.Context(), caseID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, caseToResponse(c))
}

type UpdateCaseRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Responsible   *string `json:"responsible"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	Solution      *string `json:"solution"`
	SolutionTitle *string `json:"solution_title"`
}

func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	caseID := chi.URLParam(r, "id")

	var req UpdateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.UpdateCaseInput{
		Title:         req.Title,
		Description:   req.Description,
		Responsible:   req.Responsible,
		Solution:      req.Solution,
		SolutionTitle: req.SolutionTitle,
	}
	if req.Status != nil {
		status := domain.CaseStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.CasePriority(*req.Priority)
		input.Priority = &priority
	}

	c, err := h.svc.Update(r.Context(), caseID, input, user)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, caseToResponse(c))
}

func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), caseID); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}

type RecommendationResponse struct {
	Case         *CaseResponse `json:"case"`
	Score        int           `json:"score"`
	MatchedTerms []string      `json:"matched_terms"`
}

// Similar returns solved cases ranked by similarity to the given case.
func (h *CaseHandler) Similar(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recommendations, err := h.recommend.Recommend(r.Context(), caseID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]RecommendationResponse, 0, len(recommendations))
	for _, rec := range recommendations {
		responses = append(responses, RecommendationResponse{
			Case:         caseToResponse(rec.Case),
			Score:        rec.Score,
			MatchedTerms: rec.MatchedTerms,
		})
	}
	api.Success(w, http.StatusOK, responses)
}
