// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// classificationPromptTmpl asks the capability for a domain verdict on one
// paper given the caller's domain context.
var classificationPromptTmpl = template.Must(template.New("classification").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`You are a research domain classifier. Classify the paper below by research domain and judge whether it fits the user's domain context.

Known domains: {{join .Domains ", "}}

Scores run from 0.0 (different field entirely) to 1.0 (directly relevant). Exclude papers from a completely different field, papers with the wrong scale or application, and clinical work when an engineering focus is needed.

Respond with a JSON object with these keys and no other text:
{"primary_domain": "domain_name", "secondary_domains": ["domain"], "domain_scores": {"domain": 0.9}, "is_relevant": true, "overall_relevance": 0.85, "exclusion_reasons": [], "confidence": 0.8}

User's primary domains: {{join .Primary ", "}}
User's excluded domains: {{join .Exclude ", "}}

Paper title: {{.Title}}
Abstract: {{.Abstract}}
`))

// relevancePromptTmpl asks the capability to score one paper against the
// research query.
var relevancePromptTmpl = template.Must(template.New("relevance").Parse(`You are a research paper relevance evaluator. Judge how relevant the paper below is to the research query.

Consider direct topic match, methodological relevance, conceptual overlap and practical applicability.

Scoring scale:
- 0.9-1.0: directly addresses the query
- 0.7-0.8: strong connection, most concepts align
- 0.5-0.6: partial concept overlap
- 0.3-0.4: tangential connection
- 0.0-0.2: little or no connection

Be precise and avoid clustering around 0.5. Reserve 0.9 and above for exceptional matches.

Respond with a JSON object with these keys and no other text:
{"relevance_score": 0.85, "relevance_reasons": ["reason"], "key_concepts_matched": ["concept"], "is_relevant": true, "confidence": 0.9}

Research query: {{.Query}}

Title: {{.Paper.Title}}
Abstract: {{.Paper.Abstract}}
Authors: {{.Paper.Authors}}
Year: {{.Paper.Year}}
`))

func domainNames(ds []types.Domain) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

func classificationPrompt(p types.Paper, dc *types.DomainContext) (string, error) {
	var buf bytes.Buffer
	err := classificationPromptTmpl.Execute(&buf, struct {
		Domains, Primary, Exclude []string
		Title, Abstract           string
	}{
		Domains:  domainNames(types.AllDomains),
		Primary:  domainNames(dc.PrimaryDomains),
		Exclude:  domainNames(dc.ExcludeDomains),
		Title:    p.Title,
		Abstract: p.Abstract,
	})
	return buf.String(), err
}

func relevancePrompt(query string, p types.Paper) (string, error) {
	var buf bytes.Buffer
	err := relevancePromptTmpl.Execute(&buf, struct {
		Query string
		Paper types.Paper
	}{query, p})
	return buf.String(), err
}

func clamp01(x float64) float64 {
	return max(0, min(1, x))
}
