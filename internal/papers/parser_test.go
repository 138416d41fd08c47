// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-funnel/pkg/types"
)

const sampleBlob = `Attention Is All You Need (2017) by Vaswani, Shazeer
Abstract: The dominant sequence transduction models
are based on recurrent networks.
URL: https://arxiv.org/abs/1706.03762
PDF: https://arxiv.org/pdf/1706.03762

Graph Attention Networks (N/A) by Velickovic
URL: https://arxiv.org/abs/1710.10903

   
(2020) by Nobody
Abstract: a block with no title

Untitled Preprint
Abstract: Only an abstract.`

func TestParse(t *testing.T) {
	ps := Parse(sampleBlob, types.SourceArxiv)
	require.Len(t, ps, 3)

	assert.Equal(t, "Attention Is All You Need", ps[0].Title)
	assert.Equal(t, "2017", ps[0].Year)
	assert.Equal(t, "Vaswani, Shazeer", ps[0].Authors)
	assert.Equal(t, "The dominant sequence transduction models are based on recurrent networks.", ps[0].Abstract)
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", ps[0].URL)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", ps[0].PDFURL)
	assert.Equal(t, types.SourceArxiv, ps[0].Source)

	assert.Equal(t, "Graph Attention Networks", ps[1].Title)
	assert.Equal(t, types.UnknownYear, ps[1].Year)
	assert.Equal(t, types.MissingAbstract, ps[1].Abstract)

	assert.Equal(t, "Untitled Preprint", ps[2].Title)
	assert.Equal(t, types.UnknownYear, ps[2].Year)
	assert.Equal(t, types.UnknownAuthors, ps[2].Authors)
	assert.Equal(t, "Only an abstract.", ps[2].Abstract)
}

func TestParse_IDs(t *testing.T) {
	ps := Parse(sampleBlob, types.SourceArxiv)
	seen := map[string]bool{}
	for _, p := range ps {
		assert.True(t, strings.HasPrefix(p.ID, "paper_"), p.ID)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}

	again := Parse(sampleBlob, types.SourceArxiv)
	assert.Equal(t, ps[0].ID, again[0].ID)
}

func TestParse_Markers(t *testing.T) {
	for _, blob := range []string{"", "  ", types.NoPapersFound, "no results", "Error: arXiv timed out"} {
		assert.Empty(t, Parse(blob, types.SourcePubMed), blob)
	}
}

func TestParse_FieldLineFirstIsDropped(t *testing.T) {
	blob := "Abstract: orphan abstract line\nURL: http://x\n\nPDF: http://x.pdf\n\nKept Paper (2021) by A. Author"
	ps := Parse(blob, types.SourceArxiv)
	require.Len(t, ps, 1)
	assert.Equal(t, "Kept Paper", ps[0].Title)
}

func TestHeader(t *testing.T) {
	tests := []struct {
		line                   string
		title, year, authors string
	}{
		{"Deep Learning (2015) by LeCun, Bengio, Hinton", "Deep Learning", "2015", "LeCun, Bengio, Hinton"},
		{"Deep Learning (unknown) by LeCun", "Deep Learning", "unknown", "LeCun"},
		{"Deep Learning by LeCun", "Deep Learning", "", "LeCun"},
		{"Learning by Doing by J. Smith", "Learning by Doing", "", "J. Smith"},
		{"Abstract: orphan abstract line", "", "", ""},
		{"URL: https://example.org/x", "", "", ""},
		{"Deep Learning (2015)", "Deep Learning", "2015", ""},
		{"Deep Learning", "Deep Learning", "", ""},
	}
	for _, tt := range tests {
		title, year, authors := Header(tt.line)
		assert.Equal(t, tt.title, title, tt.line)
		assert.Equal(t, tt.year, year, tt.line)
		assert.Equal(t, tt.authors, authors, tt.line)
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "crispr base editing in vivo", NormalizeTitle("CRISPR  Base Editing in   Vivo (2024) by Liu"))
	assert.Equal(t, "crispr base editing in vivo", NormalizeTitle("crispr base editing in vivo"))
	assert.Equal(t, "crispr base editing in vivo", BlockKey("CRISPR Base Editing in Vivo (2023) by X\nAbstract: y"))
}

func TestFormatRoundTrip(t *testing.T) {
	ps := Parse(sampleBlob, types.SourceOpenAlex)
	text := FormatAll(ps)
	again := Parse(text, types.SourceOpenAlex)
	assert.Equal(t, ps, again)

	assert.Equal(t, types.NoPapersFound, FormatAll(nil))
}

func TestSplitBlocks(t *testing.T) {
	blocks := SplitBlocks("a\nb\n\n\n c \r\n\r\nd")
	assert.Equal(t, []string{"a\nb", "c", "d"}, blocks)
	assert.Nil(t, SplitBlocks(types.NoPapersFound))
}
