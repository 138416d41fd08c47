// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// dedupeState tracks which normalized titles have been emitted.
type dedupeState struct {
	seen    map[string]bool
	removed int
}

func newDedupeState() *dedupeState {
	return &dedupeState{seen: make(map[string]bool)}
}

// add returns the blocks of blob whose titles were not seen before.
func (d *dedupeState) add(blob string, out []string) []string {
	for _, block := range papers.SplitBlocks(blob) {
		key := papers.BlockKey(block)
		if key != "" && d.seen[key] {
			d.removed++
			continue
		}
		d.seen[key] = true
		out = append(out, block)
	}
	return out
}

func joinBlocks(blocks []string) string {
	if len(blocks) == 0 {
		return types.NoPapersFound
	}
	return strings.Join(blocks, "\n\n")
}

// Dedupe merges blobs and drops every block whose normalized title was
// already seen. The first occurrence wins and keeps its position.
func Dedupe(blobs ...string) string {
	d := newDedupeState()
	var blocks []string
	for _, b := range blobs {
		blocks = d.add(b, blocks)
	}
	return joinBlocks(blocks)
}

// DedupeSources deduplicates across sources, visiting them in order so an
// earlier source keeps a shared paper. It returns the merged text per
// source and the number of blocks removed.
func DedupeSources(order []types.Source, bySource map[types.Source][]string) (map[types.Source]string, int) {
	d := newDedupeState()
	out := make(map[types.Source]string, len(order))
	for _, src := range order {
		var blocks []string
		for _, b := range bySource[src] {
			blocks = d.add(b, blocks)
		}
		out[src] = joinBlocks(blocks)
	}
	return out, d.removed
}
