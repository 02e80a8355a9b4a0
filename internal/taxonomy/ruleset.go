// Package taxonomy carries the classification data the webhook pipeline and
// the recommender operate on: the external status mapping table, the known
// insurer tags, the category trigger groups, the tokenizer stop words and the
// similarity scoring weights. The data is injected so new insurers, categories
// or locales can be added without touching the components that consume it.
package taxonomy

import (
	"strings"

	"github.com/safe2go/helpdesk/internal/domain"
)

// CategoryRule assigns a category when any of its triggers appears as a
// substring of the case text. Rules are evaluated in order; the first match
// wins.
type CategoryRule struct {
	Name     string
	Triggers []string
	Keywords []string
}

// ScoreWeights holds the similarity scoring constants. The values are tuned,
// not derived; the only requirement is that curated signals (category,
// insurer, keywords) dominate raw lexical overlap.
type ScoreWeights struct {
	Category int
	Insurer  int
	Term     int
	Keyword  int
	Minimum  int
}

// Ruleset is the full classification configuration.
type Ruleset struct {
	StatusMap       map[string]domain.CaseStatus
	Insurers        []string
	Categories      []CategoryRule
	DefaultCategory string
	StopWords       map[string]struct{}
	Weights         ScoreWeights
	MaxMatchedTerms int
}

// MapStatus normalizes an external status label (trim, strip trailing
// punctuation, lowercase) and looks it up in the mapping table. Unmapped
// labels fall open to pending: an unknown upstream status must never block
// ingestion.
func (r *Ruleset) MapStatus(label string) domain.CaseStatus {
	normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(label), "."))
	if status, ok := r.StatusMap[normalized]; ok {
		return status
	}
	return domain.CaseStatusPending
}

// DetectInsurer searches the given texts for a known insurer name,
// case-insensitive, whole-string containment. The first insurer in the
// configured order that appears anywhere wins.
func (r *Ruleset) DetectInsurer(texts ...string) string {
	combined := strings.ToUpper(strings.Join(texts, " "))
	for _, insurer := range r.Insurers {
		if strings.Contains(combined, strings.ToUpper(insurer)) {
			return insurer
		}
	}
	return ""
}

// Categorize runs the ordered category rules over the given text and returns
// the winning category with its curated keywords. Text that matches no rule
// gets the default category and no keywords.
func (r *Ruleset) Categorize(text string) (string, []string) {
	lowered := strings.ToLower(text)
	for _, rule := range r.Categories {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lowered, trigger) {
				keywords := make([]string, len(rule.Keywords))
				copy(keywords, rule.Keywords)
				return rule.Name, keywords
			}
		}
	}
	return r.DefaultCategory, nil
}

// Default returns the production ruleset: the Jira status labels, insurer
// partners and error categories of the Safe2Go integrations, with Portuguese
// stop words for the tokenizer.
func Default() *Ruleset {
	return &Ruleset{
		StatusMap: map[string]domain.CaseStatus{
			"to do":                   domain.CaseStatusPending,
			"in progress":             domain.CaseStatusPending,
			"em atendimento":          domain.CaseStatusInDevelopment,
			"done":                    domain.CaseStatusResolved,
			"closed":                  domain.CaseStatusResolved,
			"resolvido":               domain.CaseStatusResolved,
			"resolved":                domain.CaseStatusResolved,
			"concluído":               domain.CaseStatusResolved,
			"concluido":               domain.CaseStatusResolved,
			"aguardando cliente":      domain.CaseStatusAwaitingClient,
			"waiting for customer":    domain.CaseStatusAwaitingClient,
			"aguardando resposta":     domain.CaseStatusAwaitingClient,
			"aguardando suporte":      domain.CaseStatusPending,
			"aguardando configuração": domain.CaseStatusAwaitingConfig,
			"aguardando configuracao": domain.CaseStatusAwaitingConfig,
			"pendentes s2g":           domain.CaseStatusPending,
			"pendente":                domain.CaseStatusPending,
		},
		Insurers: []string{"AVLA", "ESSOR", "DAYCOVAL"},
		Categories: []CategoryRule{
			{Name: "Reprocessamento", Triggers: []string{"reprocessamento", "reprocessar"}, Keywords: []string{"reprocessamento", "reprocessar"}},
			{Name: "Erro Corretor", Triggers: []string{"erro corretor", "corretor"}, Keywords: []string{"erro", "corretor"}},
			{Name: "Adequação Nova Lei", Triggers: []string{"nova lei", "adequação", "adequacao"}, Keywords: []string{"nova lei", "adequação"}},
			{Name: "Erro Boleto", Triggers: []string{"boleto"}, Keywords: []string{"boleto", "pagamento"}},
			{Name: "Problema Endosso", Triggers: []string{"endosso"}, Keywords: []string{"endosso"}},
			{Name: "Sumiço de Dados", Triggers: []string{"sumiço", "sumico"}, Keywords: []string{"sumiço"}},
			{Name: "Integração", Triggers: []string{"integra"}, Keywords: []string{"integração", "teste"}},
		},
		DefaultCategory: "Outros",
		StopWords: stopWordSet(
			"de", "da", "do", "das", "dos", "em", "no", "na", "nos", "nas",
			"um", "uma", "uns", "umas", "o", "a", "os", "as", "e", "é",
			"para", "por", "com", "sem", "que", "se", "não", "mas", "ou",
			"ao", "aos", "à", "às", "pelo", "pela", "pelos", "pelas",
		),
		Weights: ScoreWeights{
			Category: 30,
			Insurer:  20,
			Term:     5,
			Keyword:  10,
			Minimum:  10,
		},
		MaxMatchedTerms: 5,
	}
}

func stopWordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
