// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// Default word range of the Main synthesis section.
const (
	DefaultMinWords = 220
	DefaultMaxWords = 300
)

// maxHypotheses is the bullet limit of the Hypotheses section.
const maxHypotheses = 2

var (
	wordRangeRe = regexp.MustCompile(`(\d{2,4})\s*[–-]\s*(\d{2,4})`)
	refEnumRe   = regexp.MustCompile(`^\d+[.)]\s+`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// Validator checks reports against the contract in Instructions.
type Validator struct {
	Instructions string
}

// Validate checks text against the default Instructions.
func Validate(text string) types.ValidationResult {
	return Validator{Instructions: Instructions}.Validate(text)
}

// TargetRange reads the "NNN–MMM" word range from the first Main synthesis
// line of instructions that has a valid one, falling back to 220–300.
func TargetRange(instructions string) (lo, hi int) {
	for _, line := range strings.Split(instructions, "\n") {
		if !strings.Contains(line, types.SectionMainSynthesis) {
			continue
		}
		m := wordRangeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lo, _ = strconv.Atoi(m[1])
		hi, _ = strconv.Atoi(m[2])
		if 0 < lo && lo < hi {
			return lo, hi
		}
	}
	return DefaultMinWords, DefaultMaxWords
}

// Validate runs every check and returns the diagnostics. Checks are
// independent; a finding in one never suppresses another.
func (v Validator) Validate(text string) types.ValidationResult {
	lo, hi := TargetRange(v.Instructions)
	r := ParseReport(text)
	res := types.ValidationResult{
		Issues:      []string{},
		Notes:       []string{},
		TargetRange: [2]int{lo, hi},
	}

	var missing []string
	for _, name := range types.RequiredSections {
		if r.Sections[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		res.Issues = append(res.Issues, "Missing sections: "+strings.Join(missing, ", "))
	}

	main := r.Sections[types.SectionMainSynthesis]
	res.WordCount = len(strings.Fields(main))
	switch {
	case res.WordCount < lo:
		res.Issues = append(res.Issues, fmt.Sprintf("Main synthesis length %d words (below target %d–%d)", res.WordCount, lo, hi))
	case res.WordCount > hi:
		res.Notes = append(res.Notes, fmt.Sprintf("Main synthesis length %d words (above target %d–%d; permitted when needed for correctness)", res.WordCount, lo, hi))
	}

	if n := countBullets(r.Sections[types.SectionHypotheses]); n > maxHypotheses {
		res.Issues = append(res.Issues, fmt.Sprintf("Too many hypotheses (%d > %d)", n, maxHypotheses))
	}

	if strings.Contains(main, "~") {
		res.Issues = append(res.Issues, "Use ≈ for approximate values; '~' found")
	}

	if unmatched := unmatchedCitations(r.CitationKeys, r.ReferenceKeys); len(unmatched) > 0 {
		res.Issues = append(res.Issues, "Inline citations not found in References: "+strings.Join(unmatched, ", "))
	}
	return res
}

// ParseReport splits text into the required sections and extracts the
// inline citation keys of Main synthesis and the reference keys.
func ParseReport(text string) types.SynthesisReport {
	sections := map[string]string{}
	var (
		current string
		buf     []string
	)
	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(sections[current] + "\n" + strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if name, ok := headingName(line); ok {
			flush()
			current = name
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()

	return types.SynthesisReport{
		RawText:       text,
		Sections:      sections,
		CitationKeys:  citationKeys(sections[types.SectionMainSynthesis]),
		ReferenceKeys: referenceKeys(sections[types.SectionReferences]),
	}
}

// headingName matches a line against the required section names. Leading
// markdown '#' marks, surrounding bold markers and a trailing colon are
// ignored.
func headingName(line string) (string, bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimLeft(s, "#"))
	for {
		before := s
		s = strings.TrimSuffix(s, ":")
		s = strings.TrimPrefix(s, "**")
		s = strings.TrimSuffix(s, "**")
		s = strings.TrimSpace(s)
		if s == before {
			break
		}
	}
	for _, name := range types.RequiredSections {
		if s == name {
			return name, true
		}
	}
	return "", false
}

func countBullets(block string) int {
	n := 0
	for _, line := range strings.Split(block, "\n") {
		s := strings.TrimSpace(line)
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "•") {
			n++
		}
	}
	return n
}

func normalizeKey(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// referenceKeys takes the title part of each "Short title, Year — URL"
// line, after stripping list markers.
func referenceKeys(block string) []string {
	var keys []string
	seen := map[string]bool{}
	for _, line := range strings.Split(block, "\n") {
		s := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(s, "-"):
			s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
		case strings.HasPrefix(s, "•"):
			s = strings.TrimSpace(strings.TrimPrefix(s, "•"))
		default:
			if loc := refEnumRe.FindStringIndex(s); loc != nil {
				s = strings.TrimSpace(s[loc[1]:])
			}
		}
		if title, _, ok := strings.Cut(s, "—"); ok {
			s = title
		}
		if key := normalizeKey(s); key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// citationKeys finds bracketed citation groups such as [Key] or
// [Key1; Key2]. A bracket immediately followed by '(' is a markdown link
// and is skipped.
func citationKeys(text string) []string {
	var keys []string
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '[')
		if start < 0 {
			break
		}
		start += i
		end := strings.IndexByte(text[start+1:], ']')
		if end < 0 {
			break
		}
		end += start + 1
		i = end + 1

		if strings.HasPrefix(text[end+1:], "(") {
			continue
		}
		for _, part := range strings.Split(text[start+1:end], ";") {
			if key := normalizeKey(part); key != "" {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// unmatchedCitations returns the citation keys missing from refs, each
// once, in order of first use.
func unmatchedCitations(cites, refs []string) []string {
	known := map[string]bool{}
	for _, r := range refs {
		known[r] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, c := range cites {
		if !known[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
