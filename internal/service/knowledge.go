package service

import (
	"context"
	"strings"

	"github.com/safe2go/helpdesk/internal/domain"
)

// KnowledgeEntry is a solved case presented as a knowledge base article.
type KnowledgeEntry struct {
	Case *domain.Case
}

// KnowledgeStats summarizes the knowledge base.
type KnowledgeStats struct {
	Total      int
	ByCategory map[string]int
	ByInsurer  map[string]int
}

// KnowledgeFilters narrows knowledge base listings. Query is matched
// case-insensitively against title, description and solution.
type KnowledgeFilters struct {
	Category string
	Insurer  string
	Query    string
}

// KnowledgeService exposes resolved cases with solutions as a searchable
// knowledge base
type KnowledgeService struct {
	caseRepo CaseRepositoryInterface
}

func NewKnowledgeService(caseRepo CaseRepositoryInterface) *KnowledgeService {
	return &KnowledgeService{caseRepo: caseRepo}
}

// List returns knowledge base entries matching the filters, most recently
// solved first.
func (s *KnowledgeService) List(ctx context.Context, filters KnowledgeFilters) ([]KnowledgeEntry, error) {
	cases, err := s.caseRepo.ListResolvedWithSolution(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filters.Query))

	entries := make([]KnowledgeEntry, 0, len(cases))
	for _, c := range cases {
		if filters.Category != "" && !strings.EqualFold(c.Category, filters.Category) {
			continue
		}
		if filters.Insurer != "" && !strings.EqualFold(c.Insurer, filters.Insurer) {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(c.Title + " " + c.Description + " " + c.Solution)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		entries = append(entries, KnowledgeEntry{Case: c})
	}
	return entries, nil
}

// Stats totals the knowledge base by category and insurer.
func (s *KnowledgeService) Stats(ctx context.Context) (*KnowledgeStats, error) {
	cases, err := s.caseRepo.ListResolvedWithSolution(ctx)
	if err != nil {
		return nil, err
	}

	stats := &KnowledgeStats{
		Total:      len(cases),
		ByCategory: make(map[string]int),
		ByInsurer:  make(map[string]int),
	}
	for _, c := range cases {
		if c.Category != "" {
			stats.ByCategory[c.Category]++
		}
		if c.Insurer != "" {
			stats.ByInsurer[c.Insurer]++
		}
	}
	return stats, nil
}
