// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Domain is a research domain used for domain-aware filtering.
type Domain string

const (
	DomainPhysics              Domain = "physics"
	DomainEngineering          Domain = "engineering"
	DomainComputerScience      Domain = "computer_science"
	DomainMathematics          Domain = "mathematics"
	DomainChemistry            Domain = "chemistry"
	DomainMaterialsScience     Domain = "materials_science"
	DomainBiology              Domain = "biology"
	DomainMedicine             Domain = "medicine"
	DomainNeuroscience         Domain = "neuroscience"
	DomainPsychology           Domain = "psychology"
	DomainEconomics            Domain = "economics"
	DomainEnvironmentalScience Domain = "environmental_science"
	DomainAstronomy            Domain = "astronomy"
	DomainGeosciences          Domain = "geosciences"
	DomainStatistics           Domain = "statistics"
)

// AllDomains lists every domain in display order.
var AllDomains = []Domain{
	DomainPhysics, DomainEngineering, DomainComputerScience, DomainMathematics,
	DomainChemistry, DomainMaterialsScience, DomainBiology, DomainMedicine,
	DomainNeuroscience, DomainPsychology, DomainEconomics, DomainEnvironmentalScience,
	DomainAstronomy, DomainGeosciences, DomainStatistics,
}

var domainLabels = map[Domain]string{
	DomainPhysics:              "Physics",
	DomainEngineering:          "Engineering",
	DomainComputerScience:      "Computer Science",
	DomainMathematics:          "Mathematics",
	DomainChemistry:            "Chemistry",
	DomainMaterialsScience:     "Materials Science",
	DomainBiology:              "Biology",
	DomainMedicine:             "Medicine",
	DomainNeuroscience:         "Neuroscience",
	DomainPsychology:           "Psychology",
	DomainEconomics:            "Economics",
	DomainEnvironmentalScience: "Environmental Science",
	DomainAstronomy:            "Astronomy",
	DomainGeosciences:          "Geosciences",
	DomainStatistics:           "Statistics",
}

// Label returns the human-readable name of the domain.
func (d Domain) Label() string {
	if l, ok := domainLabels[d]; ok {
		return l
	}
	return string(d)
}

// ParseDomain maps a domain name to a Domain.
func ParseDomain(name string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := domainLabels[d]; !ok {
		return "", fmt.Errorf("unknown domain %q", name)
	}
	return d, nil
}

// DomainContext describes the user's domain focus. A nil *DomainContext
// means no domain filtering.
type DomainContext struct {
	PrimaryDomains []Domain           `json:"primary_domains" yaml:"primary_domains"`
	ExcludeDomains []Domain           `json:"exclude_domains" yaml:"exclude_domains"`
	FocusKeywords  []string           `json:"focus_keywords" yaml:"focus_keywords"`
	DomainWeights  map[Domain]float64 `json:"domain_weights" yaml:"domain_weights"`
}

// NewDomainContext builds a context from raw names. Unknown domain names
// and blank keywords are dropped. It returns nil when nothing usable remains.
func NewDomainContext(primary, exclude, focus []string) *DomainContext {
	dc := &DomainContext{DomainWeights: map[Domain]float64{}}
	for _, name := range primary {
		if d, err := ParseDomain(name); err == nil && !containsDomain(dc.PrimaryDomains, d) {
			dc.PrimaryDomains = append(dc.PrimaryDomains, d)
			dc.DomainWeights[d] = 1.0
		}
	}
	for _, name := range exclude {
		if d, err := ParseDomain(name); err == nil && !containsDomain(dc.ExcludeDomains, d) {
			dc.ExcludeDomains = append(dc.ExcludeDomains, d)
		}
	}
	for _, k := range focus {
		if k = strings.TrimSpace(k); k != "" {
			dc.FocusKeywords = append(dc.FocusKeywords, k)
		}
	}
	if len(dc.PrimaryDomains) == 0 && len(dc.ExcludeDomains) == 0 && len(dc.FocusKeywords) == 0 {
		return nil
	}
	return dc
}

// IsPrimary reports whether d is one of the primary domains.
func (dc *DomainContext) IsPrimary(d Domain) bool {
	return dc != nil && containsDomain(dc.PrimaryDomains, d)
}

// IsExcluded reports whether d is one of the excluded domains.
func (dc *DomainContext) IsExcluded(d Domain) bool {
	return dc != nil && containsDomain(dc.ExcludeDomains, d)
}

func containsDomain(list []Domain, d Domain) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

// DomainClassification is the domain filter's verdict for one paper.
type DomainClassification struct {
	PaperID         string             `json:"paper_id" yaml:"paper_id"`
	Title           string             `json:"title" yaml:"title"`
	PrimaryDomain   Domain             `json:"primary_domain,omitempty" yaml:"primary_domain,omitempty"`
	DetectedDomains []Domain           `json:"detected_domains" yaml:"detected_domains"`
	DomainScores    map[Domain]float64 `json:"domain_scores" yaml:"domain_scores"`

	// Score is the relevance of the paper to the domain context, in [0,1].
	Score float64 `json:"score" yaml:"score"`

	// Reasons carries exclusion reasons when the paper was rejected.
	Reasons    []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Admitted   bool     `json:"admitted" yaml:"admitted"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
}
