// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RelevanceTier buckets a relevance score.
type RelevanceTier string

const (
	TierHigh     RelevanceTier = "high"
	TierModerate RelevanceTier = "moderate"
	TierLow      RelevanceTier = "low"
)

// TierFor returns the tier of score: high at 0.7 and above, moderate from
// 0.4, low below.
func TierFor(score float64) RelevanceTier {
	switch {
	case score >= 0.7:
		return TierHigh
	case score >= 0.4:
		return TierModerate
	default:
		return TierLow
	}
}

// RelevanceScore is the relevance filter's verdict for one paper.
type RelevanceScore struct {
	PaperID         string   `json:"paper_id" yaml:"paper_id"`
	Title           string   `json:"title" yaml:"title"`
	Score           float64  `json:"score" yaml:"score"`
	Reasons         []string `json:"reasons" yaml:"reasons"`
	MatchedConcepts []string `json:"matched_concepts" yaml:"matched_concepts"`
	Admitted        bool     `json:"admitted" yaml:"admitted"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
}

// RelevanceResults summarizes one relevance filter pass.
type RelevanceResults struct {
	OriginalCount int              `json:"original_count" yaml:"original_count"`
	FilteredCount int              `json:"filtered_count" yaml:"filtered_count"`
	Scored        []RelevanceScore `json:"scored" yaml:"scored"`
	High          []string         `json:"high" yaml:"high"`
	Moderate      []string         `json:"moderate" yaml:"moderate"`
	Low           []string         `json:"low" yaml:"low"`
}
