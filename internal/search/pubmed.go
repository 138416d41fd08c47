// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// pubmedBase is the NCBI E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var pubmedBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

const pubmedTool = "research-funnel"

// PubMedFetcher queries PubMed in two steps: esearch for IDs, then efetch
// for the article records.
type PubMedFetcher struct {
	client

	APIKey string
	Email  string
}

// NewPubMedFetcher creates a PubMed fetcher. NCBI allows three requests per
// second without an API key and ten with one.
func NewPubMedFetcher(cfg types.SearchConfig) *PubMedFetcher {
	every := time.Second / 3
	if cfg.PubMedAPIKey != "" {
		every = time.Second / 10
	}
	return &PubMedFetcher{
		client: newClient(cfg, every),
		APIKey: cfg.PubMedAPIKey,
		Email:  cfg.PubMedEmail,
	}
}

// Source returns types.SourcePubMed.
func (f *PubMedFetcher) Source() types.Source { return types.SourcePubMed }

// etiquette adds the tool, email and api_key parameters NCBI asks for.
func (f *PubMedFetcher) etiquette(v url.Values) {
	v.Set("tool", pubmedTool)
	if f.Email != "" {
		v.Set("email", f.Email)
	}
	if f.APIKey != "" {
		v.Set("api_key", f.APIKey)
	}
}

// Fetch searches PubMed newest first and returns the matching articles.
func (f *PubMedFetcher) Fetch(ctx context.Context, queryOrURL string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = defaultFetchMax
	}

	var searchURL string
	if strings.HasPrefix(queryOrURL, "http") {
		u, err := url.Parse(queryOrURL)
		if err != nil {
			return "", fmt.Errorf("parsing PubMed URL: %w", err)
		}
		v := u.Query()
		f.etiquette(v)
		u.RawQuery = v.Encode()
		searchURL = u.String()
	} else {
		v := url.Values{
			"db":      {"pubmed"},
			"term":    {queryOrURL},
			"retmax":  {strconv.Itoa(maxResults)},
			"sort":    {"pub date"},
			"retmode": {"json"},
		}
		f.etiquette(v)
		searchURL = pubmedBase + "esearch.fcgi?" + v.Encode()
	}

	body, err := f.get(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("searching PubMed: %w", err)
	}
	var sr pubmedSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("parsing PubMed search response: %w", err)
	}

	var ids []string
	for _, id := range sr.Result.IDList {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return types.NoPapersFound, nil
	}

	v := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	f.etiquette(v)
	body, err = f.get(ctx, pubmedBase+"efetch.fcgi?"+v.Encode())
	if err != nil {
		return "", fmt.Errorf("fetching PubMed details: %w", err)
	}
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return "", fmt.Errorf("parsing PubMed XML: %w", err)
	}

	var found []types.Paper
	for _, a := range set.Articles {
		if p, ok := a.paper(); ok {
			found = append(found, p)
		}
	}
	return papers.FormatAll(found), nil
}

type pubmedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID    string `xml:"MedlineCitation>PMID"`
	Article *struct {
		Title    pubmedText   `xml:"ArticleTitle"`
		Abstract []pubmedText `xml:"Abstract>AbstractText"`
		Authors  []struct {
			LastName string `xml:"LastName"`
			ForeName string `xml:"ForeName"`
		} `xml:"AuthorList>Author"`
		Year string `xml:"Journal>JournalIssue>PubDate>Year"`
	} `xml:"MedlineCitation>Article"`
}

// pubmedText is element text with inline markup such as <i> flattened.
type pubmedText string

func (t *pubmedText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tt := tok.(type) {
		case xml.CharData:
			sb.Write(tt)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = pubmedText(collapse(sb.String()))
				return nil
			}
			depth--
		}
	}
}

func (a pubmedArticle) paper() (types.Paper, bool) {
	if a.Article == nil {
		return types.Paper{}, false
	}
	p := types.Paper{
		ID:       strings.TrimSpace(a.PMID),
		Title:    string(a.Article.Title),
		Year:     "N/A",
		Authors:  types.UnknownAuthors,
		Abstract: types.MissingAbstract,
		Source:   types.SourcePubMed,
	}
	if p.Title == "" {
		p.Title = "No title"
	}
	if y := strings.TrimSpace(a.Article.Year); y != "" {
		p.Year = y
	}

	var names []string
	for _, au := range a.Article.Authors {
		last, fore := strings.TrimSpace(au.LastName), strings.TrimSpace(au.ForeName)
		switch {
		case last != "" && fore != "":
			names = append(names, fore+" "+last)
		case last != "":
			names = append(names, last)
		case fore != "":
			names = append(names, fore)
		}
	}
	if len(names) > 0 {
		p.Authors = strings.Join(names, ", ")
	}

	var chunks []string
	for _, t := range a.Article.Abstract {
		if t != "" {
			chunks = append(chunks, string(t))
		}
	}
	if len(chunks) > 0 {
		p.Abstract = strings.Join(chunks, " ")
	}
	if p.ID != "" {
		p.URL = "https://pubmed.ncbi.nlm.nih.gov/" + p.ID + "/"
	}
	return p, true
}
