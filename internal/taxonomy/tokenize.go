package taxonomy

import (
	"regexp"
	"sort"
	"strings"
)

// Word runs of letters, digits or underscore, at least three runes long.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{3,}`)

// Tokenize extracts the set of significant terms from free text: lowercase
// word tokens of length >= 3 with stop words removed.
func (r *Ruleset) Tokenize(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, token := range termPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := r.StopWords[token]; stop {
			continue
		}
		terms[token] = struct{}{}
	}
	return terms
}

// Intersect returns the members of a that also appear in b, sorted so that
// callers get a stable result.
func Intersect(a, b map[string]struct{}) []string {
	var common []string
	for term := range a {
		if _, ok := b[term]; ok {
			common = append(common, term)
		}
	}
	sort.Strings(common)
	return common
}

// NormalizeKeywords lowercases a curated keyword list into a set for
// case-insensitive overlap counting.
func NormalizeKeywords(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[strings.ToLower(kw)] = struct{}{}
	}
	return set
}
