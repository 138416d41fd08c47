// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package domain holds the static research-domain knowledge used by the
// domain filter and the terminology expander: indicator patterns per
// domain, exclusion patterns, and the arXiv category map.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// Info describes one domain for listings.
type Info struct {
	Name        types.Domain `json:"name" yaml:"name"`
	Label       string       `json:"label" yaml:"label"`
	Description string       `json:"description" yaml:"description"`
	HasPatterns bool         `json:"has_patterns" yaml:"has_patterns"`

	// ArxivArchives lists the arXiv archives that map to the domain.
	ArxivArchives []string `json:"arxiv_archives,omitempty" yaml:"arxiv_archives,omitempty"`
}

// All returns every domain with its display name and description.
func All() []Info {
	out := make([]Info, 0, len(types.AllDomains))
	for _, d := range types.AllDomains {
		_, ok := Lookup(d)
		out = append(out, Info{
			Name:          d,
			Label:         d.Label(),
			Description:   descriptions[d],
			HasPatterns:   ok,
			ArxivArchives: Archives(d),
		})
	}
	return out
}

// Lookup returns the indicator patterns of d.
func Lookup(d types.Domain) (Patterns, bool) {
	for _, row := range table {
		if row.Domain == d {
			return row.Patterns, true
		}
	}
	return Patterns{}, false
}

// Parse maps a name to a Domain, accepting display names as well
// ("Computer Science" and "computer_science" both work).
func Parse(name string) (types.Domain, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return types.ParseDomain(s)
}

// ParseAll parses names, dropping unknown ones. The dropped names are returned too.
func ParseAll(names []string) (known []types.Domain, unknown []string) {
	for _, n := range names {
		if d, err := Parse(n); err == nil {
			known = append(known, d)
		} else {
			unknown = append(unknown, n)
		}
	}
	return known, unknown
}

// Contains reports whether term occurs in text starting at a word boundary.
// Both are compared case-insensitively; text should already be lower-cased.
func Contains(text, term string) bool {
	term = strings.ToLower(term)
	for i := 0; ; {
		j := strings.Index(text[i:], term)
		if j < 0 {
			return false
		}
		at := i + j
		if at == 0 || !isWordRune(rune(text[at-1])) {
			return true
		}
		i = at + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Detect scores every patterned domain against the title and abstract and
// returns the domains scoring at least max(2, 0.3 × best), highest first,
// along with all non-zero raw scores.
func Detect(title, abstract string) ([]types.Domain, map[types.Domain]int) {
	text := strings.ToLower(title + " " + abstract)
	scores := map[types.Domain]int{}
	best := 0
	for _, row := range table {
		s := 0
		for _, k := range row.Keywords {
			if Contains(text, k) {
				s += KeywordWeight
			}
		}
		for _, m := range row.Methods {
			if Contains(text, m) {
				s += MethodWeight
			}
		}
		for _, a := range row.Applications {
			if Contains(text, a) {
				s += ApplicationWeight
			}
		}
		if s > 0 {
			scores[row.Domain] = s
			best = max(best, s)
		}
	}
	if best == 0 {
		return nil, scores
	}

	threshold := max(2.0, 0.3*float64(best))
	var detected []types.Domain
	for _, row := range table {
		if s, ok := scores[row.Domain]; ok && float64(s) >= threshold {
			detected = append(detected, row.Domain)
		}
	}
	sort.SliceStable(detected, func(i, j int) bool {
		return scores[detected[i]] > scores[detected[j]]
	})
	return detected, scores
}

// Exclusions checks the exclusion patterns of each target domain and
// returns one reason per hit.
func Exclusions(title, abstract string, targets []types.Domain) []string {
	text := strings.ToLower(title + " " + abstract)
	var reasons []string
	for _, d := range targets {
		for _, p := range exclusions[d] {
			if strings.Contains(text, p) {
				reasons = append(reasons, fmt.Sprintf("Contains '%s' - not suitable for %s", p, d))
			}
		}
	}
	return reasons
}

// FromArxivCategory maps an arXiv category such as "quant-ph" or "cs.LG"
// to a domain.
func FromArxivCategory(category string) (types.Domain, bool) {
	c := strings.ToLower(strings.TrimSpace(category))
	if archive, _, ok := strings.Cut(c, "."); ok {
		c = archive
	}
	d, ok := arxivCategories[c]
	return d, ok
}

// Archives returns the arXiv archives that map to d, sorted.
func Archives(d types.Domain) []string {
	var out []string
	for archive, ad := range arxivCategories {
		if ad == d {
			out = append(out, archive)
		}
	}
	sort.Strings(out)
	return out
}

// Description returns the one-line description of d.
func Description(d types.Domain) string {
	return descriptions[d]
}

// Vocabulary returns up to nKeywords keywords and nMethods methods of d,
// in table order.
func Vocabulary(d types.Domain, nKeywords, nMethods int) []string {
	p, ok := Lookup(d)
	if !ok {
		return nil
	}
	out := append([]string(nil), p.Keywords[:min(nKeywords, len(p.Keywords))]...)
	return append(out, p.Methods[:min(nMethods, len(p.Methods))]...)
}
