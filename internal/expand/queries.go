// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expand

import (
	"strings"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// Query list defaults.
const (
	DefaultMaxQueries = 8
	DefaultTopPrimary = 4
)

// BuildQueries derives the ordered fan-out query list: the original query,
// the top primary terms joined, up to 3 primary+adjacent pairs, up to 2
// alternative phrasings, up to 2 primary+narrower pairs, and up to 2
// related concepts. Entries are unique case-insensitively and the list is
// capped at maxQueries.
func BuildQueries(query string, t types.ExpandedTerminology, maxQueries, topN int) []string {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	if topN <= 0 {
		topN = DefaultTopPrimary
	}

	candidates := []string{query}
	if len(t.PrimaryTerms) > 0 {
		candidates = append(candidates, strings.Join(t.PrimaryTerms[:min(topN, len(t.PrimaryTerms))], " "))
		lead := t.PrimaryTerms[0]
		for _, adj := range t.AdjacentTerms[:min(3, len(t.AdjacentTerms))] {
			candidates = append(candidates, lead+" "+adj)
		}
		candidates = append(candidates, longTerms(t.AlternativePhrasings, 2)...)
		for _, n := range t.NarrowerTerms[:min(2, len(t.NarrowerTerms))] {
			candidates = append(candidates, lead+" "+n)
		}
	} else {
		candidates = append(candidates, longTerms(t.AlternativePhrasings, 2)...)
	}
	candidates = append(candidates, longTerms(t.RelatedConcepts, 2)...)

	return dedupe(candidates, nil, maxQueries)
}

// longTerms returns up to n terms longer than three characters.
func longTerms(terms []string, n int) []string {
	var out []string
	for _, t := range terms {
		if len(out) == n {
			break
		}
		if len(strings.TrimSpace(t)) > 3 {
			out = append(out, t)
		}
	}
	return out
}
