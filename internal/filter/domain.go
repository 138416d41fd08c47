// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter implements the two admission stages of the funnel: the
// domain filter, which drops papers outside the caller's domain context,
// and the relevance filter, which scores the survivors against the query.
// Both ask the language capability first and fall back to keyword rules
// when it is missing or fails.
package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/domain"
	"github.com/pdiddy/research-funnel/internal/llm"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// Fallback domain scores and confidences.
const (
	domainAdmitScore      = 0.7
	domainRejectScore     = 0.1
	domainRuleConfidence  = 0.5
	domainModelConfidence = 0.8
	defaultModelRelevance = 0.5
)

// DomainFilter admits papers that fit a DomainContext.
type DomainFilter struct {
	Capability llm.Capability
	Logger     *zap.Logger
}

// domainVerdict is the JSON object the capability is asked for.
type domainVerdict struct {
	PrimaryDomain    string             `json:"primary_domain"`
	SecondaryDomains []string           `json:"secondary_domains"`
	DomainScores     map[string]float64 `json:"domain_scores"`
	IsRelevant       *bool              `json:"is_relevant"`
	OverallRelevance *float64           `json:"overall_relevance"`
	ExclusionReasons []string           `json:"exclusion_reasons"`
	Confidence       *float64           `json:"confidence"`
}

func (f *DomainFilter) logger() *zap.Logger {
	if f == nil || f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// Classify returns the domain verdict for one paper. Exclusion patterns of
// the primary domains and any detected excluded domain reject the paper
// outright with a score of zero.
func (f *DomainFilter) Classify(ctx context.Context, p types.Paper, dc *types.DomainContext) types.DomainClassification {
	abstract := p.Abstract
	if abstract == types.MissingAbstract {
		abstract = ""
	}
	detected, raw := domain.Detect(p.Title, abstract)

	var reasons []string
	if dc != nil {
		reasons = domain.Exclusions(p.Title, abstract, dc.PrimaryDomains)
		for _, d := range detected {
			if dc.IsExcluded(d) {
				reasons = append(reasons, fmt.Sprintf("Detected excluded domain %s", d))
			}
		}
	}
	excluded := len(reasons) > 0

	c := types.DomainClassification{
		PaperID:         p.ID,
		Title:           p.Title,
		PrimaryDomain:   types.DomainComputerScience,
		DetectedDomains: append([]types.Domain{}, detected...),
		DomainScores:    map[types.Domain]float64{},
		Reasons:         reasons,
	}
	if len(detected) > 0 {
		c.PrimaryDomain = detected[0]
	}

	if f != nil && f.Capability != nil && dc != nil {
		v, err := f.classifyAI(ctx, p, dc)
		if err == nil {
			f.applyVerdict(&c, v, excluded)
			return c
		}
		f.logger().Debug("domain classification fell back to rules",
			zap.String("paper", p.ID), zap.Error(err))
	}

	for _, d := range detected {
		c.DomainScores[d] = float64(raw[d]) / float64(raw[detected[0]])
	}
	c.Confidence = domainRuleConfidence
	if excluded {
		return c
	}
	weight, matched := primaryWeight(detected, dc)
	if matched {
		c.Admitted = true
		c.Score = clamp01(domainAdmitScore * weight)
	} else {
		c.Score = domainRejectScore
	}
	return c
}

// primaryWeight reports whether any detected domain is a primary domain
// and returns the largest weight among those. Without primary domains
// every paper matches with weight one.
func primaryWeight(detected []types.Domain, dc *types.DomainContext) (float64, bool) {
	if dc == nil || len(dc.PrimaryDomains) == 0 {
		return 1, true
	}
	best, matched := 0.0, false
	for _, d := range detected {
		if !dc.IsPrimary(d) {
			continue
		}
		w, ok := dc.DomainWeights[d]
		if !ok {
			w = 1
		}
		best, matched = max(best, w), true
	}
	return best, matched
}

func (f *DomainFilter) classifyAI(ctx context.Context, p types.Paper, dc *types.DomainContext) (domainVerdict, error) {
	prompt, err := classificationPrompt(p, dc)
	if err != nil {
		return domainVerdict{}, err
	}
	var v domainVerdict
	err = llm.InvokeJSON(ctx, f.Capability, prompt, &v)
	return v, err
}

// applyVerdict merges a capability verdict into the rule-based result.
func (f *DomainFilter) applyVerdict(c *types.DomainClassification, v domainVerdict, excluded bool) {
	if d, err := domain.Parse(v.PrimaryDomain); err == nil {
		c.PrimaryDomain = d
	}
	for _, name := range v.SecondaryDomains {
		d, err := domain.Parse(name)
		if err != nil || containsDomain(c.DetectedDomains, d) {
			continue
		}
		c.DetectedDomains = append(c.DetectedDomains, d)
	}
	for name, s := range v.DomainScores {
		if d, err := domain.Parse(name); err == nil {
			c.DomainScores[d] = clamp01(s)
		}
	}

	relevant := v.IsRelevant == nil || *v.IsRelevant
	c.Score = defaultModelRelevance
	if v.OverallRelevance != nil {
		c.Score = clamp01(*v.OverallRelevance)
	}
	c.Confidence = domainModelConfidence
	if v.Confidence != nil {
		c.Confidence = clamp01(*v.Confidence)
	}

	if excluded {
		c.Score = 0
		c.Reasons = append(c.Reasons, v.ExclusionReasons...)
		return
	}
	c.Admitted = relevant
	if !relevant {
		c.Reasons = append(c.Reasons, v.ExclusionReasons...)
	}
}

func containsDomain(list []types.Domain, d types.Domain) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

// Filter classifies every paper and returns the admitted ones in input
// order with all verdicts. A nil context admits everything.
func (f *DomainFilter) Filter(ctx context.Context, ps []types.Paper, dc *types.DomainContext) ([]types.Paper, []types.DomainClassification) {
	if dc == nil {
		return ps, nil
	}
	admitted := []types.Paper{}
	results := make([]types.DomainClassification, 0, len(ps))
	for _, p := range ps {
		c := f.Classify(ctx, p, dc)
		results = append(results, c)
		if c.Admitted {
			admitted = append(admitted, p)
		}
	}
	f.logger().Info("domain filter complete",
		zap.Int("papers", len(ps)), zap.Int("admitted", len(admitted)))
	return admitted, results
}
