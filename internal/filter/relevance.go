// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/llm"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// DefaultMinRelevance is the admission threshold of the relevance filter.
const DefaultMinRelevance = 0.4

const (
	titleWeight            = 0.7
	abstractWeight         = 0.3
	keywordConfidence      = 0.6
	defaultModelConfidence = 0.8
)

var relevanceTokenRe = regexp.MustCompile(`[a-zA-Z]{3,}`)

// RelevanceFilter scores papers against the research query and keeps those
// at or above MinScore, best first.
type RelevanceFilter struct {
	Capability llm.Capability

	// MinScore is the admission threshold; zero means DefaultMinRelevance.
	MinScore float64

	// MaxPapers caps the retained list after sorting; zero means no cap.
	MaxPapers int

	Logger *zap.Logger
}

// relevanceVerdict is the JSON object the capability is asked for.
type relevanceVerdict struct {
	RelevanceScore     *float64 `json:"relevance_score"`
	RelevanceReasons   []string `json:"relevance_reasons"`
	KeyConceptsMatched []string `json:"key_concepts_matched"`
	IsRelevant         *bool    `json:"is_relevant"`
	Confidence         *float64 `json:"confidence"`
}

func (f *RelevanceFilter) minScore() float64 {
	if f.MinScore > 0 {
		return f.MinScore
	}
	return DefaultMinRelevance
}

func (f *RelevanceFilter) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// Score returns the relevance verdict for one paper, asking the capability
// first and falling back to keyword overlap.
func (f *RelevanceFilter) Score(ctx context.Context, query string, p types.Paper) types.RelevanceScore {
	if f.Capability != nil {
		s, err := f.scoreAI(ctx, query, p)
		if err == nil {
			return s
		}
		f.logger().Debug("relevance scoring fell back to keywords",
			zap.String("paper", p.ID), zap.Error(err))
	}
	return KeywordScore(query, p, f.minScore())
}

func (f *RelevanceFilter) scoreAI(ctx context.Context, query string, p types.Paper) (types.RelevanceScore, error) {
	prompt, err := relevancePrompt(query, p)
	if err != nil {
		return types.RelevanceScore{}, err
	}
	var v relevanceVerdict
	if err := llm.InvokeJSON(ctx, f.Capability, prompt, &v); err != nil {
		return types.RelevanceScore{}, err
	}
	if v.RelevanceScore == nil {
		return types.RelevanceScore{}, fmt.Errorf("capability response has no relevance_score")
	}
	s := types.RelevanceScore{
		PaperID:         p.ID,
		Title:           p.Title,
		Score:           clamp01(*v.RelevanceScore),
		Reasons:         nonNil(v.RelevanceReasons),
		MatchedConcepts: nonNil(v.KeyConceptsMatched),
		Confidence:      defaultModelConfidence,
	}
	if v.Confidence != nil {
		s.Confidence = clamp01(*v.Confidence)
	}
	s.Admitted = s.Score >= f.minScore()
	return s, nil
}

// KeywordScore is the rule-based relevance score: the share of query
// tokens found in the title, weighted 0.7, plus the share found in the
// abstract, weighted 0.3. Tokens are runs of three or more letters.
func KeywordScore(query string, p types.Paper, minScore float64) types.RelevanceScore {
	var terms []string
	seen := map[string]bool{}
	for _, t := range relevanceTokenRe.FindAllString(strings.ToLower(query), -1) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	abstract := p.Abstract
	if strings.HasPrefix(abstract, types.MissingAbstract) {
		abstract = ""
	}
	title, abs := tokenSet(p.Title), tokenSet(abstract)

	matched := []string{}
	var inTitle, inAbstract int
	for _, t := range terms {
		if title[t] {
			inTitle++
		}
		if abs[t] {
			inAbstract++
		}
		if title[t] || abs[t] {
			matched = append(matched, t)
		}
	}

	var score float64
	if n := float64(len(terms)); n > 0 {
		score = clamp01(titleWeight*(float64(inTitle)/n) + abstractWeight*(float64(inAbstract)/n))
	}
	return types.RelevanceScore{
		PaperID:         p.ID,
		Title:           p.Title,
		Score:           score,
		Reasons:         []string{fmt.Sprintf("Keyword matching: %d/%d terms matched", len(matched), len(terms))},
		MatchedConcepts: matched,
		Admitted:        score >= minScore,
		Confidence:      keywordConfidence,
	}
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range relevanceTokenRe.FindAllString(strings.ToLower(s), -1) {
		set[t] = true
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Filter scores every paper, sorts by score descending (ties keep input
// order), keeps those at or above MinScore and then applies MaxPapers. The
// returned results list every scored paper with its tier.
func (f *RelevanceFilter) Filter(ctx context.Context, query string, ps []types.Paper) ([]types.Paper, types.RelevanceResults) {
	res := types.RelevanceResults{
		OriginalCount: len(ps),
		Scored:        []types.RelevanceScore{},
		High:          []string{},
		Moderate:      []string{},
		Low:           []string{},
	}
	if len(ps) == 0 {
		return []types.Paper{}, res
	}

	type scored struct {
		paper types.Paper
		score types.RelevanceScore
	}
	all := make([]scored, len(ps))
	for i, p := range ps {
		all[i] = scored{paper: p, score: f.Score(ctx, query, p)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score.Score > all[j].score.Score
	})

	threshold := f.minScore()
	retained := []types.Paper{}
	for _, s := range all {
		res.Scored = append(res.Scored, s.score)
		switch types.TierFor(s.score.Score) {
		case types.TierHigh:
			res.High = append(res.High, s.score.PaperID)
		case types.TierModerate:
			res.Moderate = append(res.Moderate, s.score.PaperID)
		default:
			res.Low = append(res.Low, s.score.PaperID)
		}
		if s.score.Score >= threshold {
			retained = append(retained, s.paper)
		}
	}
	if f.MaxPapers > 0 && len(retained) > f.MaxPapers {
		retained = retained[:f.MaxPapers]
	}
	res.FilteredCount = len(retained)

	f.logger().Info("relevance filter complete",
		zap.Int("papers", len(ps)),
		zap.Int("retained", len(retained)),
		zap.Int("high", len(res.High)),
		zap.Int("moderate", len(res.Moderate)),
	)
	return retained, res
}
