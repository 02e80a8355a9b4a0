package service

import (
	"context"
	"sort"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
)

// DayCount is one bucket of a daily chart.
type DayCount struct {
	Day   string
	Count int
}

// DashboardStats aggregates the case book for the overview screen.
type DashboardStats struct {
	Total          int
	ByStatus       map[domain.CaseStatus]int
	ByInsurer      map[string]int
	CompletionRate float64
	RecentCases    []*domain.Case
}

// RecurrentCategory flags a category that keeps producing cases, with a
// coarse automation suggestion.
type RecurrentCategory struct {
	Category   string
	Count      int
	Percentage float64
	Suggestion string
}

// StatsFilters narrows dashboard aggregates.
type StatsFilters struct {
	Insurer string
	Since   *time.Time
}

// DashboardService computes aggregate views over the case book
type DashboardService struct {
	caseRepo CaseRepositoryInterface
}

func NewDashboardService(caseRepo CaseRepositoryInterface) *DashboardService {
	return &DashboardService{caseRepo: caseRepo}
}

// Stats returns status and insurer breakdowns plus the completion rate.
// Clients only see their own cases.
func (s *DashboardService) Stats(ctx context.Context, requester *domain.User, filters StatsFilters) (*DashboardStats, error) {
	caseFilters := CaseFilters{Insurer: filters.Insurer, Since: filters.Since}
	if requester.Role != domain.UserRoleAdmin {
		caseFilters.CreatorID = requester.ID
	}

	byStatus, err := s.caseRepo.CountByStatus(ctx, caseFilters)
	if err != nil {
		return nil, err
	}
	byInsurer, err := s.caseRepo.CountByInsurer(ctx, caseFilters)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	completion := 0.0
	if total > 0 {
		completion = float64(byStatus[domain.CaseStatusResolved]) / float64(total) * 100
	}

	recent, err := s.caseRepo.ListRecent(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Total:          total,
		ByStatus:       byStatus,
		ByInsurer:      byInsurer,
		CompletionRate: completion,
		RecentCases:    recent,
	}, nil
}

// Charts returns per-day case creation counts over the range, filling days
// with no cases with zero. The default window is the last seven days.
func (s *DashboardService) Charts(ctx context.Context, from, to time.Time, status domain.CaseStatus) ([]DayCount, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -7)
	}
	if status != "" && !domain.IsValidCaseStatus(status) {
		return nil, domain.ErrInvalidCaseStatus
	}

	counted, err := s.caseRepo.CountCreatedByDay(ctx, from, to, status)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int, len(counted))
	for _, dc := range counted {
		byDay[dc.Day] = dc.Count
	}

	var series []DayCount
	for day := from.Truncate(24 * time.Hour); !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		series = append(series, DayCount{Day: key, Count: byDay[key]})
	}
	return series, nil
}

// RecurrentCategories ranks categories by case volume and suggests whether
// each is worth automating.
func (s *DashboardService) RecurrentCategories(ctx context.Context) ([]RecurrentCategory, error) {
	byCategory, err := s.caseRepo.CountByCategory(ctx, CaseFilters{})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byCategory {
		total += n
	}
	if total == 0 {
		return []RecurrentCategory{}, nil
	}

	var result []RecurrentCategory
	for category, count := range byCategory {
		if category == "" {
			category = "Outros"
		}
		result = append(result, RecurrentCategory{
			Category:   category,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
			Suggestion: suggestionTier(count),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

func suggestionTier(count int) string {
	switch {
	case count >= 5:
		return "Automação crítica recomendada"
	case count >= 3:
		return "Atenção: avaliar automação"
	default:
		return "Monitorar"
	}
}
