// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// DefaultMaxChars caps the paper data section of the prompt.
const DefaultMaxChars = 20000

// NoPapers is the synthesis text of a run where nothing survived the funnel.
const NoPapers = "No papers found to analyze."

// usable reports whether a source's text carries papers worth synthesizing.
func usable(text string) bool {
	return strings.TrimSpace(text) != "" && !papers.IsMarker(text)
}

// HasContent reports whether any source in perSource has usable paper text.
func HasContent(perSource map[types.Source]string) bool {
	for _, text := range perSource {
		if usable(text) {
			return true
		}
	}
	return false
}

// BuildPrompt joins the usable per-source text in order under
// "=== SOURCE Results ===" headers, truncates the joined data to maxChars
// (DefaultMaxChars when zero or negative) and prefixes the user query.
func BuildPrompt(query string, perSource map[types.Source]string, order []types.Source, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	var b strings.Builder
	for _, src := range order {
		text := perSource[src]
		if !usable(text) {
			continue
		}
		fmt.Fprintf(&b, "\n=== %s Results ===\n%s\n", strings.ToUpper(string(src)), text)
	}
	return fmt.Sprintf("User Query: %s\n\nPaper Data:\n%s", query, truncate(b.String(), maxChars))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
