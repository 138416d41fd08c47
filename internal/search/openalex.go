// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexMaxPerPage is the largest per_page OpenAlex accepts.
const openAlexMaxPerPage = 200

// OpenAlexFetcher queries the OpenAlex works API, newest first.
type OpenAlexFetcher struct {
	client

	// Email is sent as the mailto parameter for polite pool access.
	Email string
}

// NewOpenAlexFetcher creates an OpenAlex fetcher from configuration.
func NewOpenAlexFetcher(cfg types.SearchConfig) *OpenAlexFetcher {
	return &OpenAlexFetcher{
		client: newClient(cfg, 100*time.Millisecond),
		Email:  cfg.OpenAlexEmail,
	}
}

// Source returns types.SourceOpenAlex.
func (f *OpenAlexFetcher) Source() types.Source { return types.SourceOpenAlex }

// Fetch runs a works search sorted by publication year, descending.
func (f *OpenAlexFetcher) Fetch(ctx context.Context, queryOrURL string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = defaultFetchMax
	}
	maxResults = min(maxResults, openAlexMaxPerPage)

	reqURL := queryOrURL
	if !strings.HasPrefix(queryOrURL, "http") {
		params := url.Values{
			"search":   {queryOrURL},
			"per_page": {strconv.Itoa(maxResults)},
			"sort":     {"publication_year:desc"},
		}
		if f.Email != "" {
			params.Set("mailto", f.Email)
		}
		reqURL = openAlexSearchBase + "?" + params.Encode()
	}

	body, err := f.get(ctx, reqURL)
	if err != nil {
		return "", fmt.Errorf("fetching from OpenAlex: %w", err)
	}
	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var found []types.Paper
	for _, w := range oar.Results {
		if len(found) >= maxResults {
			break
		}
		found = append(found, w.paper())
	}
	return papers.FormatAll(found), nil
}

func (w openAlexWork) paper() types.Paper {
	p := types.Paper{
		ID:       w.ID,
		Title:    collapse(w.DisplayName),
		Year:     "N/A",
		Authors:  types.UnknownAuthors,
		Abstract: reconstructAbstract(w.AbstractInvertedIndex),
		Source:   types.SourceOpenAlex,
	}
	if p.Title == "" {
		p.Title = collapse(w.Title)
	}
	if p.Title == "" {
		p.Title = "No title"
	}
	if w.PublicationYear > 0 {
		p.Year = strconv.Itoa(w.PublicationYear)
	}

	var names []string
	for _, a := range w.Authorships {
		if n := strings.TrimSpace(a.Author.DisplayName); n != "" {
			names = append(names, n)
		}
	}
	if len(names) > 0 {
		p.Authors = strings.Join(names, ", ")
	}

	var venue, sourceURL, landing string
	if loc := w.PrimaryLocation; loc != nil {
		landing = loc.LandingPageURL
		if loc.Source != nil {
			venue = strings.TrimSpace(loc.Source.DisplayName)
			sourceURL = loc.Source.URL
		}
	}
	if p.Abstract == "" {
		p.Abstract = types.MissingAbstract
		if venue != "" {
			p.Abstract = types.MissingAbstract + ". Venue: " + venue
		}
	}

	switch {
	case landing != "":
		p.URL = landing
	case sourceURL != "":
		p.URL = sourceURL
	default:
		p.URL = w.ID
	}
	return p
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			if pos >= 0 {
				pairs = append(pairs, posWord{pos: pos, word: word})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return collapse(strings.Join(words, " "))
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	DisplayName           string               `json:"display_name"`
	Title                 string               `json:"title"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       *openAlexLocation    `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	LandingPageURL string          `json:"landing_page_url"`
	Source         *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}
