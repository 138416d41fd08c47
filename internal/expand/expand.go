// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand derives categorized search terminology from a research
// query and turns it into an ordered list of fan-out queries.
package expand

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/domain"
	"github.com/pdiddy/research-funnel/internal/llm"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// DefaultMaxTermsPerCategory caps each terminology list.
const DefaultMaxTermsPerCategory = 15

const maxTokens = 10

var (
	quotedRe = regexp.MustCompile(`"([^"]+)"`)
	tokenRe  = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9\-_]*\b`)
)

// Expander builds ExpandedTerminology from static tables and, when
// configured, the language capability.
type Expander struct {
	Capability          llm.Capability
	MaxTermsPerCategory int
	UseAI               bool
	Logger              *zap.Logger
}

// aiTerms is the JSON object the capability is asked for.
type aiTerms struct {
	AdjacentTerms        []string `json:"adjacent_terms"`
	BroaderTerms         []string `json:"broader_terms"`
	NarrowerTerms        []string `json:"narrower_terms"`
	AlternativePhrasings []string `json:"alternative_phrasings"`
	RelatedMethods       []string `json:"related_methods"`
	CrossDisciplinary    []string `json:"cross_disciplinary"`
}

var expansionPromptTmpl = template.Must(template.New("expansion").Parse(`You are a research librarian expanding a search query with related academic terminology for arXiv, PubMed and OpenAlex.

Generate for the query below:
- adjacent_terms: related concepts in the same field
- broader_terms: higher-level categories that contain the topic
- narrower_terms: more specific subtopics
- alternative_phrasings: synonyms and abbreviations (e.g. "NLP" and "natural language processing")
- related_methods: techniques or algorithms commonly used
- cross_disciplinary: related concepts from adjacent fields

Use academic terminology, at most 15 terms per category, and avoid generic words like "research" or "analysis".

Respond with a JSON object with exactly those six keys, each an array of strings. Do not include any text outside the JSON object.

Query: {{.Query}}
`))

// Expand returns the terminology for query. A non-nil dc adds focus
// keywords to the primary terms and domain vocabulary to the related
// concepts. Capability failures fall back to the static result.
func (e *Expander) Expand(ctx context.Context, query string, dc *types.DomainContext) types.ExpandedTerminology {
	limit := e.MaxTermsPerCategory
	if limit <= 0 {
		limit = DefaultMaxTermsPerCategory
	}

	concepts := KeyConcepts(query)
	primary := append([]string(nil), concepts...)
	var adjacent, broader, narrower, related, alternatives []string

	if f, ok := detectField(query); ok {
		for _, c := range concepts {
			if anyContained(strings.ToLower(c), f.Methods) {
				adjacent = append(adjacent, f.Methods...)
				narrower = append(narrower, f.Narrower...)
			}
		}
		broader = append(broader, f.Broader...)
		adjacent = append(adjacent, f.Adjacent...)
		narrower = append(narrower, f.Narrower...)
	}

	for _, c := range concepts {
		lc := strings.ToLower(c)
		for _, s := range synonyms {
			if strings.Contains(lc, s.Term) || equalsAny(lc, s.Synonyms) {
				alternatives = append(alternatives, s.Synonyms...)
				related = append(related, s.Term)
			}
		}
	}

	for _, c := range concepts {
		if strings.HasSuffix(c, "s") && len(c) > 3 {
			alternatives = append(alternatives, c[:len(c)-1])
		} else {
			alternatives = append(alternatives, c+"s")
		}
	}

	if dc != nil {
		primary = append(primary, dc.FocusKeywords...)
		var vocab []string
		for _, d := range dc.PrimaryDomains {
			vocab = append(vocab, domain.Vocabulary(d, 5, 3)...)
		}
		related = append(related, vocab[:min(10, len(vocab))]...)
	}

	if e.UseAI && e.Capability != nil {
		if ai, err := e.expandAI(ctx, query); err != nil {
			e.logger().Debug("terminology expansion fell back to static tables", zap.Error(err))
		} else {
			adjacent = append(adjacent, ai.AdjacentTerms...)
			broader = append(broader, ai.BroaderTerms...)
			narrower = append(narrower, ai.NarrowerTerms...)
			alternatives = append(alternatives, ai.AlternativePhrasings...)
			related = append(related, ai.RelatedMethods...)
			related = append(related, ai.CrossDisciplinary...)
		}
	}

	primary = dedupe(primary, nil, limit)
	exclude := lowerSet(primary)
	return types.ExpandedTerminology{
		PrimaryTerms:         primary,
		AdjacentTerms:        dedupe(adjacent, exclude, limit),
		BroaderTerms:         dedupe(broader, exclude, limit),
		NarrowerTerms:        dedupe(narrower, exclude, limit),
		RelatedConcepts:      dedupe(related, exclude, limit),
		AlternativePhrasings: dedupe(alternatives, exclude, limit),
	}
}

func (e *Expander) expandAI(ctx context.Context, query string) (aiTerms, error) {
	var buf bytes.Buffer
	if err := expansionPromptTmpl.Execute(&buf, struct{ Query string }{query}); err != nil {
		return aiTerms{}, err
	}
	var out aiTerms
	err := llm.InvokeJSON(ctx, e.Capability, buf.String(), &out)
	return out, err
}

func (e *Expander) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// KeyConcepts extracts, in order, the quoted phrases, the known multi-word
// terms, and up to ten informative tokens of query. Stop words and tokens
// of two characters or fewer are dropped.
func KeyConcepts(query string) []string {
	var concepts []string
	for _, m := range quotedRe.FindAllStringSubmatch(query, -1) {
		concepts = append(concepts, strings.TrimSpace(m[1]))
	}

	rest := strings.ToLower(quotedRe.ReplaceAllString(query, " "))
	for _, term := range multiWordTerms {
		if strings.Contains(rest, term) {
			concepts = append(concepts, term)
		}
	}

	n := 0
	for _, tok := range tokenRe.FindAllString(rest, -1) {
		if n == maxTokens {
			break
		}
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		concepts = append(concepts, tok)
		n++
	}
	return dedupe(concepts, nil, 0)
}

// fieldIndex returns the field whose detection patterns occur most often
// in query, or -1. The first field wins on ties.
func fieldIndex(query string) int {
	q := strings.ToLower(query)
	best, bestScore := -1, 0
	for i, f := range fields {
		score := 0
		for _, p := range f.Patterns {
			if domain.Contains(q, p) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func detectField(query string) (fieldTerms, bool) {
	i := fieldIndex(query)
	if i < 0 {
		return fieldTerms{}, false
	}
	return fields[i].Terms, true
}

// DetectField names the field detected for query, or "general".
func DetectField(query string) string {
	if i := fieldIndex(query); i >= 0 {
		return fields[i].Name
	}
	return "general"
}

func anyContained(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func equalsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.EqualFold(s, t) {
			return true
		}
	}
	return false
}

func lowerSet(terms []string) map[string]bool {
	m := make(map[string]bool, len(terms))
	for _, t := range terms {
		m[strings.ToLower(t)] = true
	}
	return m
}

// dedupe keeps the first spelling of each term under case-insensitive
// comparison, skips blanks and excluded terms, and stops at limit (0 means
// no limit).
func dedupe(terms []string, exclude map[string]bool, limit int) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" || seen[k] || exclude[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
