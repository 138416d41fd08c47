// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-funnel/internal/budget"
	"github.com/pdiddy/research-funnel/internal/httputil"
	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

func testCfg() types.SearchConfig {
	cfg := types.DefaultPipelineConfig().Search
	cfg.Timeout = 5 * time.Second
	cfg.UserAgent = "research-funnel-test"
	return cfg
}

// fastClient removes rate limiting and retry waits for tests.
func fastClient(c *client, ts *httptest.Server) {
	c.HTTP = ts.Client()
	c.Limiter = nil
	c.Policy = httputil.Policy{Attempts: 2, BaseDelay: time.Millisecond}
}

func atomEntry(id, title, published string, withPDF bool, authors ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<entry>\n<id>http://arxiv.org/abs/%sv1</id>\n", id)
	fmt.Fprintf(&sb, "<published>%s</published>\n", published)
	fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	fmt.Fprintf(&sb, "<summary>  Summary of\n  %s.  </summary>\n", title)
	for _, a := range authors {
		fmt.Fprintf(&sb, "<author><name>%s</name></author>\n", a)
	}
	fmt.Fprintf(&sb, `<link href="http://arxiv.org/abs/%sv1" rel="alternate" type="text/html"/>`+"\n", id)
	if withPDF {
		fmt.Fprintf(&sb, `<link title="pdf" href="http://arxiv.org/pdf/%sv1" rel="related" type="application/pdf"/>`+"\n", id)
	}
	sb.WriteString("</entry>\n")
	return sb.String()
}

func atomFeed(title string, entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title type="html">` + title + "</title>\n" + strings.Join(entries, "") + "</feed>"
}

func newArxivTest(t *testing.T, handler http.HandlerFunc) *ArxivFetcher {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() { arxivAPIBase = old })

	f := NewArxivFetcher(testCfg())
	fastClient(&f.client, ts)
	f.PageDelay = 0
	return f
}

func TestArxivSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"fielded passthrough", "ti:transformer AND cat:cs.CL", "ti:transformer AND cat:cs.CL"},
		{
			"terms and guessed category",
			"quantum error correction",
			"(ti:quantum OR ti:error OR ti:correction OR abs:quantum OR abs:error OR abs:correction OR (cat:quant-ph))",
		},
		{
			"quoted phrase is required",
			`"large language model" agents`,
			`(ti:"large language model" OR abs:"large language model") AND (ti:agents OR abs:agents OR (cat:cs.CL OR cat:cs.LG))`,
		},
		{
			"at most four terms",
			"sparse mixture experts routing stability",
			"(ti:sparse OR ti:mixture OR ti:experts OR ti:routing OR abs:sparse OR abs:mixture OR abs:experts OR abs:routing)",
		},
		{"stop words only", "the of and", "all:the of and"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArxivSearchQuery(tt.query))
		})
	}
}

func TestArxivBroaden(t *testing.T) {
	f := &ArxivFetcher{}

	got, ok := f.Broaden("quantum error correction")
	assert.True(t, ok)
	assert.Equal(t, "all:quantum error correction", got)

	for _, q := range []string{"ti:quantum", "the of and", "https://export.arxiv.org/api/query?search_query=x", ""} {
		_, ok := f.Broaden(q)
		assert.False(t, ok, q)
	}
}

func TestArxivFetch(t *testing.T) {
	var got *http.Request
	f := newArxivTest(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, atomFeed("ArXiv Query: quantum",
			atomEntry("2401.00001", "Surface Codes at Scale", "2024-01-03T00:00:00Z", true, "Ada Lovelace", "Alan Turing"),
			atomEntry("2301.00002", "Logical  Qubits\n  Revisited", "2023-05-01T00:00:00Z", false),
		))
	})

	out, err := f.Fetch(context.Background(), "quantum error correction", 5)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "0", q.Get("start"))
	assert.Equal(t, "10", q.Get("max_results"))
	assert.Equal(t, "relevance", q.Get("sortBy"))
	assert.Equal(t, "descending", q.Get("sortOrder"))
	assert.Contains(t, q.Get("search_query"), "ti:quantum")
	assert.Equal(t, "research-funnel-test", got.Header.Get("User-Agent"))

	ps := papers.Parse(out, types.SourceArxiv)
	require.Len(t, ps, 2)
	assert.Equal(t, "Surface Codes at Scale", ps[0].Title)
	assert.Equal(t, "2024", ps[0].Year)
	assert.Equal(t, "Ada Lovelace, Alan Turing", ps[0].Authors)
	assert.Equal(t, "Summary of Surface Codes at Scale.", ps[0].Abstract)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", ps[0].URL)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1", ps[0].PDFURL)

	assert.Equal(t, "Logical Qubits Revisited", ps[1].Title)
	assert.Equal(t, types.UnknownAuthors, ps[1].Authors)
	assert.Equal(t, "http://arxiv.org/pdf/2301.00002v1.pdf", ps[1].PDFURL)
}

func TestArxivFetchPaginatesWithMinYear(t *testing.T) {
	var mu sync.Mutex
	var starts []string
	f := newArxivTest(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		starts = append(starts, r.URL.Query().Get("start"))
		mu.Unlock()

		var entries []string
		if r.URL.Query().Get("start") == "0" {
			for i := 0; i < 10; i++ {
				year := "2015"
				if i < 2 {
					year = "2024"
				}
				entries = append(entries, atomEntry(fmt.Sprintf("1.%04d", i), fmt.Sprintf("Page one %d", i), year+"-01-01T00:00:00Z", false))
			}
		} else {
			for i := 0; i < 3; i++ {
				entries = append(entries, atomEntry(fmt.Sprintf("2.%04d", i), fmt.Sprintf("Page two %d", i), "2025-01-01T00:00:00Z", false))
			}
		}
		fmt.Fprint(w, atomFeed("ArXiv Query", entries...))
	})
	f.MinYear = 2020

	out, err := f.Fetch(context.Background(), "ti:qubits", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "10"}, starts)

	ps := papers.Parse(out, types.SourceArxiv)
	require.Len(t, ps, 5)
	assert.Equal(t, "Page one 0", ps[0].Title)
	assert.Equal(t, "Page two 2", ps[4].Title)
}

func TestFanoutChargesOneCallPerQuery(t *testing.T) {
	var mu sync.Mutex
	requests := 0
	f := newArxivTest(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		var entries []string
		if r.URL.Query().Get("start") == "0" {
			for i := 0; i < 10; i++ {
				entries = append(entries, atomEntry(fmt.Sprintf("3.%04d", i), fmt.Sprintf("Old %d", i), "2010-01-01T00:00:00Z", false))
			}
		} else {
			entries = append(entries, atomEntry("4.0000", "Recent", "2025-01-01T00:00:00Z", false))
		}
		fmt.Fprint(w, atomFeed("ArXiv Query", entries...))
	})
	f.MinYear = 2020

	b := budget.New(types.BudgetConfig{MaxCalls: 10})
	ctx := budget.NewContext(context.Background(), b)
	fan := &Fanout{Fetcher: f, MaxPerQuery: 5}
	recordSleep(fan)

	blobs, meta := fan.Run(ctx, []string{"ti:qubits"})
	require.Len(t, blobs, 1)
	assert.Equal(t, []string{"ti:qubits"}, meta.QueriesExecuted)

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, requests, 1, "min-year filtering forces extra pages")
	assert.Equal(t, 1, b.Usage().Calls)
}

func TestArxivFetchFullURLPatchesPagination(t *testing.T) {
	var got *http.Request
	f := newArxivTest(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, atomFeed("ArXiv Query"))
	})

	out, err := f.Fetch(context.Background(), arxivAPIBase+"?search_query=all:graphene&start=40&max_results=3", 5)
	require.NoError(t, err)
	assert.Equal(t, types.NoPapersFound, out)

	q := got.URL.Query()
	assert.Equal(t, "all:graphene", q.Get("search_query"))
	assert.Equal(t, "0", q.Get("start"))
	assert.Equal(t, "10", q.Get("max_results"))
	assert.Equal(t, "submittedDate", q.Get("sortBy"))
}

func TestArxivFetchErrorFeed(t *testing.T) {
	f := newArxivTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomFeed("Error: malformed query"))
	})
	_, err := f.Fetch(context.Background(), "ti:", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arXiv API error")
}

func TestArxivFetchRetriesServerError(t *testing.T) {
	calls := 0
	f := newArxivTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, atomFeed("ArXiv Query",
			atomEntry("2401.00003", "Recovered", "2024-02-02T00:00:00Z", false)))
	})

	out, err := f.Fetch(context.Background(), "ti:recovered", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, out, "Recovered (2024)")
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/hep-th/9901001v3", "hep-th/9901001"},
		{"https://example.org/paper", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractArxivID(tt.in), tt.in)
	}
}
