// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

const pubmedFetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">38000001</PMID>
      <Article PubModel="Print">
        <Journal>
          <JournalIssue CitedMedium="Internet">
            <PubDate><Year>2024</Year><Month>Mar</Month></PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>Off-target effects of <i>Cas9</i> variants</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">CRISPR systems cut DNA.</AbstractText>
          <AbstractText Label="RESULTS">High-fidelity variants reduce errors.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Doudna</LastName><ForeName>Jennifer</ForeName></Author>
          <Author><LastName>Zhang</LastName></Author>
          <Author><CollectiveName>CRISPR Consortium</CollectiveName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">38000002</PMID>
      <Article>
        <Journal><JournalIssue><PubDate><MedlineDate>2023 Winter</MedlineDate></PubDate></JournalIssue></Journal>
        <ArticleTitle>Delivery vectors for gene therapy</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

type pubmedServer struct {
	search, fetch url.Values
	fetchCalls    int
}

func newPubMedTest(t *testing.T, ids string) (*PubMedFetcher, *pubmedServer) {
	t.Helper()
	ps := &pubmedServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		ps.search = r.URL.Query()
		fmt.Fprintf(w, `{"header": {}, "esearchresult": {"count": "2", "idlist": [%s]}}`, ids)
	})
	mux.HandleFunc("/efetch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		ps.fetch = r.URL.Query()
		ps.fetchCalls++
		fmt.Fprint(w, pubmedFetchFixture)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	old := pubmedBase
	pubmedBase = ts.URL + "/"
	t.Cleanup(func() { pubmedBase = old })

	f := NewPubMedFetcher(testCfg())
	fastClient(&f.client, ts)
	return f, ps
}

func TestPubMedFetch(t *testing.T) {
	f, srv := newPubMedTest(t, `"38000001", "38000002"`)
	f.APIKey = "k3y"
	f.Email = "lab@example.org"

	out, err := f.Fetch(context.Background(), "CRISPR off-target", 7)
	require.NoError(t, err)

	assert.Equal(t, "pubmed", srv.search.Get("db"))
	assert.Equal(t, "CRISPR off-target", srv.search.Get("term"))
	assert.Equal(t, "7", srv.search.Get("retmax"))
	assert.Equal(t, "pub date", srv.search.Get("sort"))
	assert.Equal(t, "json", srv.search.Get("retmode"))
	assert.Equal(t, "research-funnel", srv.search.Get("tool"))
	assert.Equal(t, "k3y", srv.search.Get("api_key"))
	assert.Equal(t, "lab@example.org", srv.search.Get("email"))

	assert.Equal(t, "38000001,38000002", srv.fetch.Get("id"))
	assert.Equal(t, "xml", srv.fetch.Get("retmode"))
	assert.Equal(t, "k3y", srv.fetch.Get("api_key"))

	ps := papers.Parse(out, types.SourcePubMed)
	require.Len(t, ps, 2)

	assert.Equal(t, "Off-target effects of Cas9 variants", ps[0].Title)
	assert.Equal(t, "2024", ps[0].Year)
	assert.Equal(t, "Jennifer Doudna, Zhang", ps[0].Authors)
	assert.Equal(t, "CRISPR systems cut DNA. High-fidelity variants reduce errors.", ps[0].Abstract)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/38000001/", ps[0].URL)

	assert.Equal(t, "Delivery vectors for gene therapy", ps[1].Title)
	assert.Equal(t, types.UnknownYear, ps[1].Year)
	assert.Equal(t, types.UnknownAuthors, ps[1].Authors)
	assert.Equal(t, types.MissingAbstract, ps[1].Abstract)
}

func TestPubMedFetchNoIDs(t *testing.T) {
	f, srv := newPubMedTest(t, "")

	out, err := f.Fetch(context.Background(), "nothing matches", 5)
	require.NoError(t, err)
	assert.Equal(t, types.NoPapersFound, out)
	assert.Zero(t, srv.fetchCalls)
}

func TestPubMedFetchFullURLAddsEtiquette(t *testing.T) {
	f, srv := newPubMedTest(t, `"38000001"`)

	_, err := f.Fetch(context.Background(), pubmedBase+"esearch.fcgi?db=pubmed&term=cas9&retmode=json", 5)
	require.NoError(t, err)
	assert.Equal(t, "cas9", srv.search.Get("term"))
	assert.Equal(t, "research-funnel", srv.search.Get("tool"))
	assert.Empty(t, srv.search.Get("api_key"))
}
