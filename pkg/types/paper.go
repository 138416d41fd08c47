// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Source identifies a bibliographic backend.
type Source string

const (
	SourceArxiv    Source = "arxiv"
	SourcePubMed   Source = "pubmed"
	SourceOpenAlex Source = "openalex"
)

// AllSources lists every supported source in canonical order.
var AllSources = []Source{SourceArxiv, SourcePubMed, SourceOpenAlex}

// DefaultSources is used when a request names no sources.
var DefaultSources = []Source{SourceArxiv, SourceOpenAlex}

// ParseSource maps a source name to a Source. Matching is case-insensitive.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllSources {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", name)
}

// Text markers exchanged between fetchers and the funnel.
const (
	NoPapersFound = "No papers found."
	NoResults     = "No results"
	ErrorPrefix   = "Error"
)

// Defaults applied by the record parser when a field is missing.
const (
	UnknownYear     = "unknown"
	UnknownAuthors  = "N/A"
	MissingAbstract = "No abstract"
)

// Paper is one parsed paper record. Papers are immutable once parsed.
type Paper struct {
	// ID is derived from title and position; it is unique only within one parse pass.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Year is a four-digit year or "unknown".
	Year string `json:"year" yaml:"year"`

	// Authors is the free-text author list or "N/A".
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or "No abstract".
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL is the landing page for the paper.
	URL string `json:"url" yaml:"url"`

	// PDFURL is an optional direct link to the PDF.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source identifies which backend found this paper.
	Source Source `json:"source" yaml:"source"`
}
