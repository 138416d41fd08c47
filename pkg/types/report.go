// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Report section headings required in a synthesis report.
const (
	SectionMainSynthesis = "Main synthesis"
	SectionTensions      = "Key tensions & gaps"
	SectionHypotheses    = "Hypotheses & minimal tests"
	SectionReferences    = "References"
)

// RequiredSections lists the report headings in their expected order.
var RequiredSections = []string{
	SectionMainSynthesis,
	SectionTensions,
	SectionHypotheses,
	SectionReferences,
}

// SynthesisReport is a parsed synthesis report. It is derived from RawText
// and never mutated.
type SynthesisReport struct {
	RawText       string            `json:"raw_text" yaml:"raw_text"`
	Sections      map[string]string `json:"sections" yaml:"sections"`
	CitationKeys  []string          `json:"citation_keys" yaml:"citation_keys"`
	ReferenceKeys []string          `json:"reference_keys" yaml:"reference_keys"`
}

// ValidationResult holds the validator's diagnostics. Issues are contract
// violations; notes are soft observations.
type ValidationResult struct {
	Issues      []string `json:"issues" yaml:"issues"`
	Notes       []string `json:"notes" yaml:"notes"`
	WordCount   int      `json:"word_count" yaml:"word_count"`
	TargetRange [2]int   `json:"target_range" yaml:"target_range"`
}
