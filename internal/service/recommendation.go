package service

import (
	"context"
	"sort"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/taxonomy"
	"github.com/safe2go/helpdesk/internal/telemetry"
)

// Recommendation pairs a previously solved case with its relevance to the
// target.
type Recommendation struct {
	Case         *domain.Case
	Score        int
	MatchedTerms []string
}

// RecommendationService suggests solved cases whose resolutions may apply to
// an open case. Ranking is a weighted lexical overlap; all weights and the
// acceptance threshold come from the injected ruleset.
type RecommendationService struct {
	caseRepo CaseRepositoryInterface
	rules    *taxonomy.Ruleset
}

func NewRecommendationService(caseRepo CaseRepositoryInterface, rules *taxonomy.Ruleset) *RecommendationService {
	return &RecommendationService{caseRepo: caseRepo, rules: rules}
}

// Recommend returns up to limit solved cases ranked by similarity to the
// target case. A resolved target gets no recommendations. Candidates scoring
// under the ruleset minimum are dropped; ties keep the repository scan order
// (most recently solved first).
func (s *RecommendationService) Recommend(ctx context.Context, targetCaseID string, limit int) ([]Recommendation, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.Recommend", telemetry.SpanAttributes{
		CaseID:    targetCaseID,
		Operation: "recommend",
	})
	defer span.End()

	if limit <= 0 {
		limit = 5
	}

	target, err := s.caseRepo.GetByID(ctx, targetCaseID)
	if err != nil {
		return nil, err
	}
	if target.IsResolved() {
		return []Recommendation{}, nil
	}

	candidates, err := s.caseRepo.ListResolvedWithSolution(ctx)
	if err != nil {
		return nil, err
	}

	targetTerms := s.rules.Tokenize(target.Title + " " + target.Description)
	targetKeywords := taxonomy.NormalizeKeywords(target.Keywords)

	var matches []Recommendation
	for _, candidate := range candidates {
		if candidate.ID == target.ID {
			continue
		}
		rec := s.score(target, targetTerms, targetKeywords, candidate)
		if rec.Score >= s.rules.Weights.Minimum {
			matches = append(matches, rec)
		}
	}

	// SliceStable keeps the scan order among equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []Recommendation{}
	}
	return matches, nil
}

func (s *RecommendationService) score(target *domain.Case, targetTerms, targetKeywords map[string]struct{}, candidate *domain.Case) Recommendation {
	w := s.rules.Weights
	score := 0

	// Category and insurer are assigned by the classifier with fixed
	// casing, so the bonus compares them exactly.
	if target.Category != "" && target.Category == candidate.Category {
		score += w.Category
	}
	if target.Insurer != "" && target.Insurer == candidate.Insurer {
		score += w.Insurer
	}

	candidateTerms := s.rules.Tokenize(candidate.Title + " " + candidate.Description + " " + candidate.Solution)
	shared := taxonomy.Intersect(targetTerms, candidateTerms)
	score += w.Term * len(shared)

	candidateKeywords := taxonomy.NormalizeKeywords(candidate.Keywords)
	sharedKeywords := taxonomy.Intersect(targetKeywords, candidateKeywords)
	score += w.Keyword * len(sharedKeywords)

	if len(shared) > s.rules.MaxMatchedTerms {
		shared = shared[:s.rules.MaxMatchedTerms]
	}

	return Recommendation{Case: candidate, Score: score, MatchedTerms: shared}
}
