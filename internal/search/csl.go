// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
	Source   string    `yaml:"source,omitempty"`
	PMID     string    `yaml:"PMID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes ranked papers as a CSL-YAML list to w, sources in the
// given order.
func FormatCSL(sets []types.RankedResultSet, w io.Writer) error {
	items := []CSLItem{}
	for _, set := range sets {
		for _, e := range set.Entries {
			for _, p := range papers.Parse(e.Block, set.Source) {
				items = append(items, toCSLItem(p))
			}
		}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a parsed paper to a CSLItem.
func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:     cslID(p),
		Type:   "article",
		Title:  p.Title,
		URL:    p.URL,
		Source: string(p.Source),
	}
	if p.Abstract != types.MissingAbstract {
		item.Abstract = p.Abstract
	}
	if p.Authors != types.UnknownAuthors {
		for _, a := range strings.Split(p.Authors, ",") {
			if n := parseAuthorName(a); n != (CSLName{}) {
				item.Author = append(item.Author, n)
			}
		}
	}
	if y, err := strconv.Atoi(p.Year); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}
	if p.Source == types.SourcePubMed {
		item.PMID = pubmedID(p.URL)
	}
	return item
}

// cslID prefers a source identifier found in the URL and falls back to
// the parser's paper ID.
func cslID(p types.Paper) string {
	switch p.Source {
	case types.SourceArxiv:
		if id := extractArxivID(p.URL); id != "" {
			return "arxiv:" + id
		}
	case types.SourcePubMed:
		if id := pubmedID(p.URL); id != "" {
			return "pmid:" + id
		}
	}
	return p.ID
}

func pubmedID(u string) string {
	const prefix = "pubmed.ncbi.nlm.nih.gov/"
	i := strings.Index(u, prefix)
	if i < 0 {
		return ""
	}
	return strings.Trim(u[i+len(prefix):], "/")
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
