// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResearchRequest is the input to one funnel run.
type ResearchRequest struct {
	Query          string   `json:"query" yaml:"query"`
	MaxResults     int      `json:"max_results,omitempty" yaml:"max_results,omitempty"`
	Sources        []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	PrimaryDomains []string `json:"primary_domains,omitempty" yaml:"primary_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty" yaml:"exclude_domains,omitempty"`
	FocusKeywords  []string `json:"focus_keywords,omitempty" yaml:"focus_keywords,omitempty"`

	// SkipSynthesis runs the funnel without the final synthesis call.
	SkipSynthesis bool `json:"skip_synthesis,omitempty" yaml:"skip_synthesis,omitempty"`
}

// BudgetUsage is a snapshot of a run budget.
type BudgetUsage struct {
	Calls           int            `json:"calls" yaml:"calls"`
	MaxCalls        int            `json:"max_calls" yaml:"max_calls"`
	ElapsedSeconds  float64        `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	ResultsBySource map[Source]int `json:"results_by_source" yaml:"results_by_source"`
	Exhausted       bool           `json:"exhausted" yaml:"exhausted"`
}

// ResearchResult is everything one funnel run produced. Stage failures are
// recorded in Notes; the result is always well-typed.
type ResearchResult struct {
	Query         string              `json:"query" yaml:"query"`
	Sources       []Source            `json:"sources" yaml:"sources"`
	DomainContext *DomainContext      `json:"domain_context,omitempty" yaml:"domain_context,omitempty"`
	Terminology   ExpandedTerminology `json:"terminology" yaml:"terminology"`
	Queries       []string            `json:"queries" yaml:"queries"`

	// Fanout holds per-source fan-out metadata in source order.
	Fanout []FanoutMetadata `json:"fanout" yaml:"fanout"`

	// UniquePapers counts papers left after cross-source deduplication.
	UniquePapers      int `json:"unique_papers" yaml:"unique_papers"`
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	Domain    []DomainClassification `json:"domain,omitempty" yaml:"domain,omitempty"`
	Relevance *RelevanceResults      `json:"relevance,omitempty" yaml:"relevance,omitempty"`

	// Results maps each source to its ranked, trimmed paper text.
	Results map[Source]string `json:"results" yaml:"results"`

	// Ranked holds the same results as structured sets in source order.
	Ranked []RankedResultSet `json:"ranked" yaml:"ranked"`

	Synthesis  string            `json:"synthesis,omitempty" yaml:"synthesis,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`
	Budget     BudgetUsage       `json:"budget" yaml:"budget"`
	Notes      []string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Papers returns the total number of ranked papers across sources.
func (r *ResearchResult) Papers() int {
	n := 0
	for _, set := range r.Ranked {
		n += len(set.Entries)
	}
	return n
}
