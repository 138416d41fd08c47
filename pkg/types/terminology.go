// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExpandedTerminology holds the categorized search terms derived from one
// research query. Every list is ordered and unique under case-insensitive
// comparison. It is built once per query and read-only afterwards.
type ExpandedTerminology struct {
	PrimaryTerms         []string `json:"primary_terms" yaml:"primary_terms"`
	AdjacentTerms        []string `json:"adjacent_terms" yaml:"adjacent_terms"`
	BroaderTerms         []string `json:"broader_terms" yaml:"broader_terms"`
	NarrowerTerms        []string `json:"narrower_terms" yaml:"narrower_terms"`
	RelatedConcepts      []string `json:"related_concepts" yaml:"related_concepts"`
	AlternativePhrasings []string `json:"alternative_phrasings" yaml:"alternative_phrasings"`
}
