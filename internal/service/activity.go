package service

import (
	"context"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
)

// ActivityRepositoryInterface defines the repository interface for activity persistence
type ActivityRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	List(ctx context.Context) ([]*domain.Activity, error)
	ListCurrent(ctx context.Context) ([]*domain.Activity, error)
	ListByCase(ctx context.Context, caseID string) ([]*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	SetCurrent(ctx context.Context, id, responsible string) error
	Delete(ctx context.Context, id string) error
}

// ActivityService handles support time tracking
type ActivityService struct {
	activityRepo ActivityRepositoryInterface
	uuidGen      UUIDGenerator
}

func NewActivityService(activityRepo ActivityRepositoryInterface) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, uuidGen: &DefaultUUIDGenerator{}}
}

func NewActivityServiceWithUUIDGen(activityRepo ActivityRepositoryInterface, uuidGen UUIDGenerator) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, uuidGen: uuidGen}
}

// CreateActivityInput represents the input for logging an activity
type CreateActivityInput struct {
	CaseID      string
	Responsible string
	Activity    string
	TimeSpent   int
	Notes       string
	Current     bool
}

// Create logs an activity. Marking it current releases any other current
// activity held by the same responsible.
func (s *ActivityService) Create(ctx context.Context, input CreateActivityInput) (*domain.Activity, error) {
	a := &domain.Activity{
		ID:          s.uuidGen.NewString(),
		CaseID:      input.CaseID,
		Responsible: input.Responsible,
		Activity:    input.Activity,
		TimeSpent:   input.TimeSpent,
		Notes:       input.Notes,
		Current:     false,
		CreatedAt:   time.Now().UTC(),
	}

	if err := domain.ValidateActivity(a); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	if input.Current {
		if err := s.activityRepo.SetCurrent(ctx, a.ID, a.Responsible); err != nil {
			return nil, err
		}
		a.Current = true
	}

	return a, nil
}

func (s *ActivityService) List(ctx context.Context, caseID string) ([]*domain.Activity, error) {
	if caseID != "" {
		return s.activityRepo.ListByCase(ctx, caseID)
	}
	return s.activityRepo.List(ctx)
}

// ListCurrent returns the activities each responsible is working on right
// now.
func (s *ActivityService) ListCurrent(ctx context.Context) ([]*domain.Activity, error) {
	return s.activityRepo.ListCurrent(ctx)
}

// Stop closes a current activity, recording the minutes elapsed since it was
// opened.
func (s *ActivityService) Stop(ctx context.Context, id string) (*domain.Activity, error) {
	a, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Current {
		a.Current = false
		a.TimeSpent = int(time.Since(a.CreatedAt).Minutes())
		if a.TimeSpent < 0 {
			a.TimeSpent = 0
		}
		if err := s.activityRepo.Update(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *ActivityService) Delete(ctx context.Context, id string) error {
	return s.activityRepo.Delete(ctx, id)
}
