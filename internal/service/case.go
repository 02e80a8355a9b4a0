package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/events"
	"github.com/safe2go/helpdesk/internal/pagination"
	"github.com/safe2go/helpdesk/internal/taxonomy"
	"github.com/safe2go/helpdesk/internal/telemetry"
)

// CaseFilters narrows case listings. Zero values mean "no filter".
type CaseFilters struct {
	Status      domain.CaseStatus
	Insurer     string
	Category    string
	CreatorID   string
	Responsible string
	Since       *time.Time
}

type CasePage struct {
	Items []*domain.Case
	Meta  pagination.Meta
}

// CaseRepositoryInterface defines the repository interface for case persistence
type CaseRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByJiraID(ctx context.Context, jiraID string) (*domain.Case, error)
	Update(ctx context.Context, c *domain.Case) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters CaseFilters, page pagination.Page) (*CasePage, error)
	ListResolvedWithSolution(ctx context.Context) ([]*domain.Case, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Case, error)
	NextSequence(ctx context.Context) (int64, error)
	UpsertByJiraID(ctx context.Context, c *domain.Case) (*domain.Case, bool, error)
	CountByStatus(ctx context.Context, filters CaseFilters) (map[domain.CaseStatus]int, error)
	CountByCategory(ctx context.Context, filters CaseFilters) (map[string]int, error)
	CountByInsurer(ctx context.Context, filters CaseFilters) (map[string]int, error)
	CountCreatedByDay(ctx context.Context, from, to time.Time, status domain.CaseStatus) ([]DayCount, error)
}

// Broadcaster pushes live events to connected dashboard clients.
type Broadcaster interface {
	Broadcast(event events.Event)
}

// CaseService handles business logic for support cases
type CaseService struct {
	caseRepo CaseRepositoryInterface
	rules    *taxonomy.Ruleset
	hub      Broadcaster
	uuidGen  UUIDGenerator
}

func NewCaseService(caseRepo CaseRepositoryInterface, rules *taxonomy.Ruleset, hub Broadcaster) *CaseService {
	return &CaseService{
		caseRepo: caseRepo,
		rules:    rules,
		hub:      hub,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

func NewCaseServiceWithUUIDGen(caseRepo CaseRepositoryInterface, rules *taxonomy.Ruleset, hub Broadcaster, uuidGen UUIDGenerator) *CaseService {
	s := NewCaseService(caseRepo, rules, hub)
	s.uuidGen = uuidGen
	return s
}

// CreateCaseInput represents the input for opening a case in the helpdesk
type CreateCaseInput struct {
	Title       string
	Description string
	Priority    domain.CasePriority
	Responsible string
	JiraID      string
	CreatorID   string
	CreatorName string
}

// Create opens a case. Insurer and category are inferred from the text, and
// a tracker reference is minted when none was supplied.
func (s *CaseService) Create(ctx context.Context, input CreateCaseInput) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.Create", telemetry.SpanAttributes{
		UserID:    input.CreatorID,
		Operation: "create",
	})
	defer span.End()

	jiraID := strings.TrimSpace(input.JiraID)
	if jiraID == "" {
		seq, err := s.caseRepo.NextSequence(ctx)
		if err != nil {
			return nil, err
		}
		jiraID = fmt.Sprintf("S2GSS-%05d", seq)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.CasePriorityMedium
	}

	insurer := s.rules.DetectInsurer(input.Responsible, input.Title, input.Description)
	category, keywords := s.rules.Categorize(input.Title + " " + input.Description)
	if insurer != "" {
		keywords = append(keywords, strings.ToLower(insurer))
	}

	now := time.Now().UTC()
	c := &domain.Case{
		ID:          s.uuidGen.NewString(),
		JiraID:      jiraID,
		Title:       input.Title,
		Description: input.Description,
		Responsible: input.Responsible,
		CreatorID:   input.CreatorID,
		CreatorName: input.CreatorName,
		Status:      domain.CaseStatusPending,
		Priority:    priority,
		Insurer:     insurer,
		Category:    category,
		Keywords:    keywords,
		OpenedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateCase(c); err != nil {
		return nil, err
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.hub.Broadcast(events.Event{Type: "new_case", Payload: map[string]any{
		"case_id": c.ID,
		"title":   c.Title,
	}})

	return c, nil
}

func (s *CaseService) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.GetByID", telemetry.SpanAttributes{
		CaseID:    id,
		Operation: "get",
	})
	defer span.End()

	return s.caseRepo.GetByID(ctx, id)
}

// List returns a page of cases. Clients are scoped to their own cases;
// administrators see everything.
func (s *CaseService) List(ctx context.Context, requester *domain.User, filters CaseFilters, page pagination.Page) (*CasePage, error) {
	if requester.Role != domain.UserRoleAdmin {
		filters.CreatorID = requester.ID
	}
	if filters.Status != "" && !domain.IsValidCaseStatus(filters.Status) {
		return nil, domain.ErrInvalidCaseStatus
	}
	return s.caseRepo.List(ctx, filters, page)
}

// UpdateCaseInput carries partial case changes; nil fields are left
// untouched.
type UpdateCaseInput struct {
	Title         *string
	Description   *string
	Responsible   *string
	Status        *domain.CaseStatus
	Priority      *domain.CasePriority
	Solution      *string
	SolutionTitle *string
}

// Update applies a partial update. Moving a case to resolved stamps the
// resolution time and records who resolved it.
func (s *CaseService) Update(ctx context.Context, id string, input UpdateCaseInput, updatedBy *domain.User) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.Update", telemetry.SpanAttributes{
		CaseID:    id,
		Operation: "update",
	})
	defer span.End()

	c, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		c.Title = *input.Title
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Responsible != nil {
		c.Responsible = *input.Responsible
	}
	if input.Priority != nil {
		if !domain.IsValidCasePriority(*input.Priority) {
			return nil, domain.ErrInvalidCasePriority
		}
		c.Priority = *input.Priority
	}
	if input.Solution != nil {
		c.Solution = *input.Solution
	}
	if input.SolutionTitle != nil {
		c.SolutionTitle = *input.SolutionTitle
	}
	if input.Status != nil {
		if !domain.IsValidCaseStatus(*input.Status) {
			return nil, domain.ErrInvalidCaseStatus
		}
		wasResolved := c.IsResolved()
		c.Status = *input.Status
		if c.IsResolved() && !wasResolved {
			now := time.Now().UTC()
			c.ClosedAt = &now
			c.SolvedAt = &now
			if updatedBy != nil {
				c.SolvedBy = updatedBy.Name
				c.SolvedByID = updatedBy.ID
			}
		}
	}

	if err := s.caseRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.hub.Broadcast(events.Event{Type: "case_updated", Payload: map[string]any{
		"case_id": c.ID,
		"status":  string(c.Status),
	}})

	return c, nil
}

func (s *CaseService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.Delete", telemetry.SpanAttributes{
		CaseID:    id,
		Operation: "delete",
	})
	defer span.End()

	if err := s.caseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.Broadcast(events.Event{Type: "case_deleted", Payload: map[string]any{
		"case_id": id,
	}})

	return nil
}
