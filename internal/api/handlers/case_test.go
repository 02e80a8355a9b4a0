package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/pagination"
	"github.com/safe2go/helpdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Create(ctx context.Context, input service.CreateCaseInput) (*domain.Case, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) List(ctx context.Context, requester *domain.User, filters service.CaseFilters, page pagination.Page) (*service.CasePage, error) {
	args := m.Called(ctx, requester, filters, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CasePage), args.Error(1)
}

func (m *MockCaseService) Update(ctx context.Context, id string, input service.UpdateCaseInput, updatedBy *domain.User) (*domain.Case, error) {
	args := m.Called(ctx, id, input, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Recommend(ctx context.Context, targetCaseID string, limit int) ([]service.Recommendation, error) {
	args := m.Called(ctx, targetCaseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Recommendation), args.Error(1)
}

func authenticatedRequest(method, target, body string, user *domain.User) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserKey, user))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCaseHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockCaseService)
	handler := NewCaseHandler(mockSvc, new(MockRecommendationService))

	user := &domain.User{ID: "u-1", Name: "João Parceiro", Role: domain.UserRoleClient}
	now := time.Now().UTC()
	created := &domain.Case{
		ID:        "c-1",
		JiraID:    "S2GSS-00042",
		Title:     "Erro ao emitir boleto",
		Status:    domain.CaseStatusPending,
		Priority:  domain.CasePriorityMedium,
		OpenedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mockSvc.On("Create", mock.Anything, service.CreateCaseInput{
		Title:       "Erro ao emitir boleto",
		Description: "boleto AVLA não gera",
		CreatorID:   "u-1",
		CreatorName: "João Parceiro",
	}).Return(created, nil)

	body := `{"title":"Erro ao emitir boleto","description":"boleto AVLA não gera"}`
	w := httptest.NewRecorder()

	handler.Create(w, authenticatedRequest(http.MethodPost, "/cases", body, user))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "c-1", data["id"])
	assert.Equal(t, "S2GSS-00042", data["jira_id"])
	mockSvc.AssertExpectations(t)
}

func TestCaseHandler_Create_TitleRequired(t *testing.T) {
	mockSvc := new(MockCaseService)
	handler := NewCaseHandler(mockSvc, new(MockRecommendationService))

	user := &domain.User{ID: "u-1", Role: domain.UserRoleClient}
	w := httptest.NewRecorder()

	handler.Create(w, authenticatedRequest(http.MethodPost, "/cases", `{"description":"sem título"}`, user))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCaseHandler_List_ParsesFiltersAndPage(t *testing.T) {
	mockSvc := new(MockCaseService)
	handler := NewCaseHandler(mockSvc, new(MockRecommendationService))

	user := &domain.User{ID: "adm-1", Role: domain.UserRoleAdmin}
	page := pagination.Page{Number: 2, PerPage: 10}
	mockSvc.On("List", mock.Anything, user, mock.MatchedBy(func(f service.CaseFilters) bool {
		return f.Status == domain.CaseStatusPending && f.Insurer == "AVLA" && f.Since != nil
	}), page).Return(&service.CasePage{
		Items: []*domain.Case{{ID: "c-1", Status: domain.CaseStatusPending}},
		Meta:  pagination.NewMeta(page, 11),
	}, nil)

	w := httptest.NewRecorder()
	req := authenticatedRequest(http.MethodGet, "/cases?status=pending&insurer=AVLA&days=7&page=2&per_page=10", "", user)

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["items"], 1)
	assert.Equal(t, float64(11), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
}

func TestCaseHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockCaseService)
	handler := NewCaseHandler(mockSvc, new(MockRecommendationService))

	mockSvc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrCaseNotFound)

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cases/missing", nil), "id", "missing")

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaseHandler_Update_Resolution(t *testing.T) {
	mockSvc := new(MockCaseService)
	handler := NewCaseHandler(mockSvc, new(MockRecommendationService))

	user := &domain.User{ID: "adm-1", Name: "Maria Atendente", Role: domain.UserRoleAdmin}
	now := time.Now().UTC()
	resolved := &domain.Case{
		ID:        "c-1",
		Title:     "Erro ao emitir boleto",
		Status:    domain.CaseStatusResolved,
		Priority:  domain.CasePriorityMedium,
		Solution:  "Reemitir o boleto",
		SolvedBy:  "Maria Atendente",
		SolvedAt:  &now,
		ClosedAt:  &now,
		OpenedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mockSvc.On("Update", mock.Anything, "c-1", mock.MatchedBy(func(input service.UpdateCaseInput) bool {
		return input.Status != nil && *input.Status == domain.CaseStatusResolved &&
			input.Solution != nil && *input.Solution == "Reemitir o boleto"
	}), user).Return(resolved, nil)

	body := `{"status":"resolved","solution":"Reemitir o boleto"}`
	w := httptest.NewRecorder()
	req := withURLParam(authenticatedRequest(http.MethodPut, "/cases/c-1", body, user), "id", "c-1")

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "resolved", data["status"])
	assert.Equal(t, "Maria Atendente", data["solved_by"])
	assert.NotEmpty(t, data["closed_at"])
}

func TestCaseHandler_Delete(t *testing.T) {
	mockSvc := new(MockCaseService)
	handler := NewCaseHandler(mockSvc, new(MockRecommendationService))

	mockSvc.On("Delete", mock.Anything, "c-1").Return(nil)

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/cases/c-1", nil), "id", "c-1")

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCaseHandler_Similar(t *testing.T) {
	mockSvc := new(MockCaseService)
	mockRecommend := new(MockRecommendationService)
	handler := NewCaseHandler(mockSvc, mockRecommend)

	now := time.Now().UTC()
	mockRecommend.On("Recommend", mock.Anything, "c-1", 3).Return([]service.Recommendation{
		{
			Case:         &domain.Case{ID: "c-99", Title: "Boleto vencido", Status: domain.CaseStatusResolved, OpenedAt: now, CreatedAt: now, UpdatedAt: now},
			Score:        80,
			MatchedTerms: []string{"boleto"},
		},
	}, nil)

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cases/c-1/similar?limit=3", nil), "id", "c-1")

	handler.Similar(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, float64(80), first["score"])
	assert.Equal(t, "c-99", first["case"].(map[string]interface{})["id"])
}
