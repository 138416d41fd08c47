// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// now is the clock used for recency scoring. Tests pin it.
var now = time.Now

var rankTokenRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

func rankTokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range rankTokenRe.FindAllString(strings.ToLower(s), -1) {
		set[t] = true
	}
	return set
}

// rankScore is two points per query token in the title plus a recency bonus
// of 3 - 0.5·age, floored at zero. Blocks without a numeric year get no bonus.
func rankScore(queryTokens map[string]bool, title, year string) float64 {
	overlap := 0
	for t := range rankTokens(title) {
		if queryTokens[t] {
			overlap++
		}
	}
	score := 2 * float64(overlap)
	if y, err := strconv.Atoi(year); err == nil {
		age := max(0, now().Year()-y)
		score += max(0, 3-0.5*float64(age))
	}
	return score
}

// Rank orders the blocks of text by query overlap and recency and keeps
// the first maxTotal. Ties keep their input order. A maxTotal of zero or
// less keeps everything.
func Rank(text, query string, maxTotal int) types.RankedResultSet {
	var set types.RankedResultSet
	qt := rankTokens(query)
	for _, block := range papers.SplitBlocks(text) {
		first, _, _ := strings.Cut(block, "\n")
		title, year, _ := papers.Header(first)
		set.Entries = append(set.Entries, types.RankedEntry{
			Title: title,
			Year:  year,
			Score: rankScore(qt, title, year),
			Block: block,
		})
	}
	sort.SliceStable(set.Entries, func(i, j int) bool {
		return set.Entries[i].Score > set.Entries[j].Score
	})
	if maxTotal > 0 && len(set.Entries) > maxTotal {
		set.Entries = set.Entries[:maxTotal]
	}
	return set
}

// RankAndTrim ranks every source's text and keeps at most maxTotal blocks
// each. Empty and marker texts pass through unchanged.
func RankAndTrim(perSource map[types.Source]string, query string, maxTotal int) map[types.Source]string {
	out := make(map[types.Source]string, len(perSource))
	for src, text := range perSource {
		if papers.IsMarker(text) {
			out[src] = text
			continue
		}
		out[src] = Rank(text, query, maxTotal).Text()
	}
	return out
}
