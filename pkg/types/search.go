// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-funnel pipeline:
// paper records, expanded terminology, domain and relevance verdicts, ranked
// result sets, synthesis reports, and the run request and result.
package types

import "time"

// FanoutMetadata records what one source's fan-out did.
type FanoutMetadata struct {
	// Source identifies the backend the queries were sent to.
	Source Source `json:"source" yaml:"source"`

	// QueriesExecuted lists every query sent, in order, after broadening.
	QueriesExecuted []string `json:"queries_executed" yaml:"queries_executed"`

	// FailedQueries lists queries that errored or returned a marker.
	FailedQueries []string `json:"failed_queries" yaml:"failed_queries"`

	// PapersPerQuery counts paper blocks returned per executed query.
	PapersPerQuery map[string]int `json:"papers_per_query" yaml:"papers_per_query"`

	// TotalPapers is the sum of PapersPerQuery before deduplication.
	TotalPapers int `json:"total_papers" yaml:"total_papers"`

	// Elapsed is the wall-clock time spent in the fan-out.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// BroadenedFrom and BroadenedTo are set when the first query was retried
	// in its broader form.
	BroadenedFrom string `json:"broadened_from,omitempty" yaml:"broadened_from,omitempty"`
	BroadenedTo   string `json:"broadened_to,omitempty" yaml:"broadened_to,omitempty"`

	// BudgetExhausted is true when the run budget stopped the fan-out early.
	BudgetExhausted bool `json:"budget_exhausted,omitempty" yaml:"budget_exhausted,omitempty"`
}

// RankedEntry is one paper block with its composite rank score.
type RankedEntry struct {
	Title string  `json:"title" yaml:"title"`
	Year  string  `json:"year" yaml:"year"`
	Score float64 `json:"score" yaml:"score"`
	Block string  `json:"block" yaml:"block"`
}

// RankedResultSet is one source's papers in ranking order, already trimmed.
type RankedResultSet struct {
	Source  Source        `json:"source" yaml:"source"`
	Entries []RankedEntry `json:"entries" yaml:"entries"`
}

// Text re-joins the ranked blocks with blank lines.
func (r RankedResultSet) Text() string {
	if len(r.Entries) == 0 {
		return ""
	}
	out := r.Entries[0].Block
	for _, e := range r.Entries[1:] {
		out += "\n\n" + e.Block
	}
	return out
}
