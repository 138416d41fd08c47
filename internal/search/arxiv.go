// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivMaxPages bounds pagination for one Fetch.
const arxivMaxPages = 5

// arXiv asks clients to keep at least three seconds between requests.
const arxivInterval = 3 * time.Second

var (
	arxivTokenRe  = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9\-_.+]{1,}`)
	arxivFieldRe  = regexp.MustCompile(`(?i)\b(ti|au|abs|cat|all):`)
	arxivSpaceRe  = regexp.MustCompile(`\s+`)
	arxivStopList = toLowerSet(
		"the", "a", "an", "of", "for", "and", "or", "in", "on", "to", "with",
		"via", "by", "using", "from", "into", "at", "as", "is", "are", "be",
		"we", "our", "new", "recent", "study", "approach", "method", "methods",
		"towards", "toward", "state-of-the-art", "sota", "long", "context", "memory",
	)
)

// arxivCategoryHints maps query phrases to the arXiv categories worth
// adding as optional signals.
var arxivCategoryHints = []struct {
	hint       string
	categories []string
}{
	{"language model", []string{"cs.CL", "cs.LG"}},
	{"transformer", []string{"cs.CL", "cs.LG"}},
	{"reinforcement", []string{"cs.LG", "cs.AI"}},
	{"vision", []string{"cs.CV"}},
	{"image", []string{"cs.CV"}},
	{"robot", []string{"cs.RO"}},
	{"quantum", []string{"quant-ph"}},
	{"neural", []string{"cs.LG", "cs.NE"}},
	{"graph", []string{"cs.LG", "cs.DS"}},
	{"protein", []string{"q-bio.BM"}},
	{"genom", []string{"q-bio.GN"}},
	{"galaxy", []string{"astro-ph.GA"}},
	{"superconduct", []string{"cond-mat.supr-con"}},
}

// ArxivFetcher queries the arXiv Atom API.
type ArxivFetcher struct {
	client

	// MinYear drops entries published before this year when non-zero.
	MinYear int

	// PageDelay is the pause between result pages.
	PageDelay time.Duration
}

// NewArxivFetcher creates an arXiv fetcher from configuration.
func NewArxivFetcher(cfg types.SearchConfig) *ArxivFetcher {
	return &ArxivFetcher{
		client:    newClient(cfg, arxivInterval),
		MinYear:   cfg.MinYear,
		PageDelay: arxivInterval,
	}
}

// Source returns types.SourceArxiv.
func (f *ArxivFetcher) Source() types.Source { return types.SourceArxiv }

// Broaden returns the all-fields form of a natural-language query when
// its primary form is fielded.
func (f *ArxivFetcher) Broaden(query string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" || strings.HasPrefix(q, "http") || arxivFieldRe.MatchString(q) {
		return "", false
	}
	broad := "all:" + q
	if ArxivSearchQuery(q) == broad {
		return "", false
	}
	return broad, true
}

// Fetch retrieves up to maxResults entries, paging through the feed.
func (f *ArxivFetcher) Fetch(ctx context.Context, queryOrURL string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = defaultFetchMax
	}
	pageSize := max(10, min(50, 2*maxResults))

	var found []types.Paper
	for page, start := 0, 0; page < arxivMaxPages && len(found) < maxResults; page, start = page+1, start+pageSize {
		if page > 0 && f.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return papers.FormatAll(found), nil
			case <-time.After(f.PageDelay):
			}
		}

		reqURL, err := arxivRequestURL(queryOrURL, start, pageSize)
		if err != nil {
			return "", err
		}
		body, err := f.get(ctx, reqURL)
		if err != nil {
			return "", fmt.Errorf("fetching from arXiv: %w", err)
		}

		var feed arxivFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			return "", fmt.Errorf("parsing arXiv response: %w", err)
		}
		if msg, bad := feed.apiError(); bad {
			return "", fmt.Errorf("arXiv API error: %s", msg)
		}
		if len(feed.Entries) == 0 {
			break
		}

		for _, e := range feed.Entries {
			if len(found) >= maxResults {
				break
			}
			p := e.paper()
			if f.MinYear > 0 {
				if y, err := strconv.Atoi(p.Year); err == nil && y < f.MinYear {
					continue
				}
			}
			found = append(found, p)
		}
		if len(feed.Entries) < pageSize {
			break
		}
	}
	return papers.FormatAll(found), nil
}

// arxivRequestURL builds the request for one page. Full URLs keep their
// parameters with start and max_results replaced.
func arxivRequestURL(queryOrURL string, start, pageSize int) (string, error) {
	if strings.HasPrefix(queryOrURL, "http") {
		u, err := url.Parse(queryOrURL)
		if err != nil {
			return "", fmt.Errorf("parsing arXiv URL: %w", err)
		}
		v := u.Query()
		v.Set("start", strconv.Itoa(start))
		v.Set("max_results", strconv.Itoa(pageSize))
		if v.Get("sortBy") == "" {
			v.Set("sortBy", "submittedDate")
		}
		if v.Get("sortOrder") == "" {
			v.Set("sortOrder", "descending")
		}
		u.RawQuery = v.Encode()
		return u.String(), nil
	}

	sq := ArxivSearchQuery(queryOrURL)
	sortBy := "submittedDate"
	if strings.ContainsAny(sq, ":") && !strings.HasPrefix(sq, "all:") {
		sortBy = "relevance"
	}
	v := url.Values{}
	v.Set("search_query", sq)
	v.Set("start", strconv.Itoa(start))
	v.Set("max_results", strconv.Itoa(pageSize))
	v.Set("sortBy", sortBy)
	v.Set("sortOrder", "descending")
	return arxivAPIBase + "?" + v.Encode(), nil
}

// ArxivSearchQuery turns a natural-language query into an arXiv
// search_query. Queries that already use field prefixes are returned as
// is. Up to two quoted phrases are required in title or abstract; up to
// four remaining terms and any guessed categories are optional signals.
func ArxivSearchQuery(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	if arxivFieldRe.MatchString(q) {
		return q
	}

	phrases, terms := arxivPhrasesAndTerms(q)
	var must, optional []string
	for _, p := range phrases {
		must = append(must, fmt.Sprintf(`(ti:"%s" OR abs:"%s")`, p, p))
	}
	if len(terms) > 0 {
		var sig []string
		for _, t := range terms {
			sig = append(sig, "ti:"+t)
		}
		for _, t := range terms {
			sig = append(sig, "abs:"+t)
		}
		optional = append(optional, strings.Join(sig, " OR "))
	}
	if cats := arxivGuessCategories(strings.ToLower(q)); len(cats) > 0 {
		var cs []string
		for _, c := range cats {
			cs = append(cs, "cat:"+c)
		}
		optional = append(optional, "("+strings.Join(cs, " OR ")+")")
	}

	switch {
	case len(must) > 0 && len(optional) > 0:
		return strings.Join(must, " AND ") + " AND (" + strings.Join(optional, " OR ") + ")"
	case len(must) > 0:
		return strings.Join(must, " AND ")
	case len(optional) > 0:
		return "(" + strings.Join(optional, " OR ") + ")"
	default:
		return "all:" + q
	}
}

// arxivPhrasesAndTerms splits a query into quoted phrases (at most two)
// and the first four content tokens outside them.
func arxivPhrasesAndTerms(q string) (phrases, terms []string) {
	rest := q
	for len(phrases) < 2 {
		open := strings.Index(rest, `"`)
		if open < 0 {
			break
		}
		end := strings.Index(rest[open+1:], `"`)
		if end < 0 {
			break
		}
		p := arxivSpaceRe.ReplaceAllString(strings.TrimSpace(rest[open+1:open+1+end]), " ")
		if p != "" {
			phrases = append(phrases, p)
		}
		rest = rest[:open] + " " + rest[open+1+end+1:]
	}

	seen := make(map[string]bool)
	for _, tok := range arxivTokenRe.FindAllString(strings.ToLower(rest), -1) {
		if arxivStopList[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
		if len(terms) == 4 {
			break
		}
	}
	return phrases, terms
}

func arxivGuessCategories(lower string) []string {
	var cats []string
	seen := make(map[string]bool)
	for _, h := range arxivCategoryHints {
		if !strings.Contains(lower, h.hint) {
			continue
		}
		for _, c := range h.categories {
			if !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
	}
	return cats
}

func toLowerSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = true
	}
	return m
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Title   string       `xml:"title"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

// apiError reports an error feed. arXiv signals errors with an "Error"
// title, either on the feed or on a single entry under /api/errors.
func (f arxivFeed) apiError() (string, bool) {
	if t := collapse(f.Title); strings.HasPrefix(strings.ToLower(t), "error") {
		return t, true
	}
	for _, e := range f.Entries {
		if strings.Contains(e.ID, "/api/errors") || strings.EqualFold(collapse(e.Title), "error") {
			return collapse(e.Summary), true
		}
	}
	return "", false
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

func (e arxivEntry) paper() types.Paper {
	p := types.Paper{
		ID:       extractArxivID(e.ID),
		Title:    collapse(e.Title),
		Year:     types.UnknownYear,
		Abstract: collapse(e.Summary),
		URL:      strings.TrimSpace(e.ID),
		Source:   types.SourceArxiv,
	}
	if len(e.Published) >= 4 {
		p.Year = e.Published[:4]
	}

	var names []string
	for _, a := range e.Authors {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	p.Authors = types.UnknownAuthors
	if len(names) > 0 {
		p.Authors = strings.Join(names, ", ")
	}
	if p.Abstract == "" {
		p.Abstract = types.MissingAbstract
	}

	for _, l := range e.Links {
		switch {
		case l.Rel == "alternate" && l.Href != "":
			p.URL = l.Href
		case l.Type == "application/pdf" || l.Title == "pdf":
			p.PDFURL = l.Href
		}
	}
	if p.PDFURL == "" && strings.Contains(p.URL, "/abs/") {
		p.PDFURL = strings.Replace(p.URL, "/abs/", "/pdf/", 1) + ".pdf"
	}
	return p
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

func collapse(s string) string {
	return arxivSpaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
