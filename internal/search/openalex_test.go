// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

const openAlexFixture = `{
  "meta": {"count": 3},
  "results": [
    {
      "id": "https://openalex.org/W1",
      "display_name": "Prime Editing in Human Cells",
      "publication_year": 2025,
      "authorships": [
        {"author": {"display_name": "Grace Hopper"}},
        {"author": {"display_name": "  "}},
        {"author": {"display_name": "Barbara McClintock"}}
      ],
      "abstract_inverted_index": {"Prime": [0], "editing": [1], "works": [2], "well": [3]},
      "primary_location": {
        "landing_page_url": "https://doi.org/10.1000/w1",
        "source": {"display_name": "Nature", "url": "https://nature.com"}
      }
    },
    {
      "id": "https://openalex.org/W2",
      "display_name": "Base Editors Revisited",
      "publication_year": 2023,
      "authorships": [],
      "abstract_inverted_index": null,
      "primary_location": {
        "landing_page_url": null,
        "source": {"display_name": "Cell Reports", "url": "https://cell.com/reports"}
      }
    },
    {
      "id": "https://openalex.org/W3",
      "display_name": "Untitled Preprint",
      "publication_year": null,
      "primary_location": null
    }
  ]
}`

func newOpenAlexTest(t *testing.T, handler http.HandlerFunc) *OpenAlexFetcher {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL + "/works"
	t.Cleanup(func() { openAlexSearchBase = old })

	f := NewOpenAlexFetcher(testCfg())
	fastClient(&f.client, ts)
	return f
}

func TestOpenAlexFetch(t *testing.T) {
	var got *http.Request
	f := newOpenAlexTest(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, openAlexFixture)
	})
	f.Email = "lab@example.org"

	out, err := f.Fetch(context.Background(), "prime editing", 10)
	require.NoError(t, err)

	assert.Equal(t, "/works", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "prime editing", q.Get("search"))
	assert.Equal(t, "10", q.Get("per_page"))
	assert.Equal(t, "publication_year:desc", q.Get("sort"))
	assert.Equal(t, "lab@example.org", q.Get("mailto"))

	ps := papers.Parse(out, types.SourceOpenAlex)
	require.Len(t, ps, 3)

	assert.Equal(t, "Prime Editing in Human Cells", ps[0].Title)
	assert.Equal(t, "2025", ps[0].Year)
	assert.Equal(t, "Grace Hopper, Barbara McClintock", ps[0].Authors)
	assert.Equal(t, "Prime editing works well", ps[0].Abstract)
	assert.Equal(t, "https://doi.org/10.1000/w1", ps[0].URL)

	assert.Equal(t, "No abstract. Venue: Cell Reports", ps[1].Abstract)
	assert.Equal(t, types.UnknownAuthors, ps[1].Authors)
	assert.Equal(t, "https://cell.com/reports", ps[1].URL)

	assert.Equal(t, types.UnknownYear, ps[2].Year)
	assert.Equal(t, types.MissingAbstract, ps[2].Abstract)
	assert.Equal(t, "https://openalex.org/W3", ps[2].URL)
}

func TestOpenAlexFetchEmpty(t *testing.T) {
	f := newOpenAlexTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta": {"count": 0}, "results": []}`)
	})
	out, err := f.Fetch(context.Background(), "nothing at all", 5)
	require.NoError(t, err)
	assert.Equal(t, types.NoPapersFound, out)
}

func TestOpenAlexFetchClientErrorNotRetried(t *testing.T) {
	calls := 0
	f := newOpenAlexTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := f.Fetch(context.Background(), "bad", 5)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenAlexFetchFullURL(t *testing.T) {
	var got *http.Request
	f := newOpenAlexTest(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"results": []}`)
	})
	_, err := f.Fetch(context.Background(), openAlexSearchBase+"?filter=title.search:crispr", 5)
	require.NoError(t, err)
	assert.Equal(t, "title.search:crispr", got.URL.Query().Get("filter"))
	assert.Empty(t, got.URL.Query().Get("sort"))
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name string
		idx  map[string][]int
		want string
	}{
		{"nil", nil, ""},
		{"ordered", map[string][]int{"Deep": {0}, "learning": {1}, "works": {2}}, "Deep learning works"},
		{"repeated word", map[string][]int{"the": {0, 2}, "cat": {1}, "mat": {3}}, "the cat the mat"},
		{"negative position ignored", map[string][]int{"ok": {0}, "bad": {-1}}, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.idx))
		})
	}
}
