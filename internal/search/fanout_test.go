// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/research-funnel/internal/budget"
	"github.com/pdiddy/research-funnel/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeFetcher answers from canned responses and records every call.
type fakeFetcher struct {
	src       types.Source
	responses map[string]string
	errs      map[string]error

	mu    sync.Mutex
	calls []string
	limit []int
}

func (f *fakeFetcher) Source() types.Source { return f.src }

func (f *fakeFetcher) Fetch(ctx context.Context, q string, maxResults int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.limit = append(f.limit, maxResults)
	f.mu.Unlock()
	if err := f.errs[q]; err != nil {
		return "", err
	}
	if r, ok := f.responses[q]; ok {
		return r, nil
	}
	return types.NoPapersFound, nil
}

type broadeningFetcher struct{ *fakeFetcher }

func (b broadeningFetcher) Broaden(q string) (string, bool) { return "all:" + q, true }

func blocks(prefix string, n int) string {
	var bs []string
	for i := 0; i < n; i++ {
		bs = append(bs, fmt.Sprintf("%s paper %d (2024) by A. Author\nAbstract: about %s\nURL: https://example.org/%s/%d", prefix, i, prefix, prefix, i))
	}
	return strings.Join(bs, "\n\n")
}

// recordSleep replaces the courtesy delay and records every wait.
func recordSleep(f *Fanout) *[]time.Duration {
	var waits []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return &waits
}

func TestFanoutSoftFailures(t *testing.T) {
	ff := &fakeFetcher{
		src: types.SourceArxiv,
		responses: map[string]string{
			"q1": blocks("q1", 2),
			"q4": "Error fetching from arXiv: boom",
			"q5": types.NoResults,
		},
		errs: map[string]error{"q2": errors.New("connection reset")},
	}
	f := &Fanout{Fetcher: ff, MaxPerQuery: 25, PolitenessDelay: 3 * time.Second}
	waits := recordSleep(f)

	blobs, meta := f.Run(context.Background(), []string{"q1", "q2", "q3", "q4", "q5"})

	require.Len(t, blobs, 1)
	assert.Equal(t, types.SourceArxiv, meta.Source)
	assert.Equal(t, []string{"q1", "q2", "q3", "q4", "q5"}, meta.QueriesExecuted)
	assert.Equal(t, []string{"q2", "q3", "q4", "q5"}, meta.FailedQueries)
	assert.Equal(t, 2, meta.PapersPerQuery["q1"])
	assert.Equal(t, 0, meta.PapersPerQuery["q2"])
	assert.Equal(t, 2, meta.TotalPapers)
	assert.False(t, meta.BudgetExhausted)

	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second}, *waits)
	assert.Equal(t, []int{25, 25, 25, 25, 25}, ff.limit)
}

func TestFanoutBroadensFirstEmptyQuery(t *testing.T) {
	ff := &fakeFetcher{
		src: types.SourceArxiv,
		responses: map[string]string{
			"all:q1": blocks("broad", 3),
			"q2":     blocks("q2", 1),
		},
	}
	f := &Fanout{Fetcher: broadeningFetcher{ff}, MaxPerQuery: 10}
	waits := recordSleep(f)

	blobs, meta := f.Run(context.Background(), []string{"q1", "q2"})

	assert.Len(t, blobs, 2)
	assert.Equal(t, []string{"q1", "all:q1", "q2"}, meta.QueriesExecuted)
	assert.Equal(t, []string{"q1"}, meta.FailedQueries)
	assert.Equal(t, "q1", meta.BroadenedFrom)
	assert.Equal(t, "all:q1", meta.BroadenedTo)
	assert.Equal(t, 4, meta.TotalPapers)
	assert.Len(t, *waits, 2)
}

func TestFanoutBroadensOnlyFirstQuery(t *testing.T) {
	ff := &fakeFetcher{src: types.SourceArxiv, responses: map[string]string{"q1": blocks("q1", 1)}}
	f := &Fanout{Fetcher: broadeningFetcher{ff}}
	recordSleep(f)

	_, meta := f.Run(context.Background(), []string{"q1", "q2"})
	assert.Equal(t, []string{"q1", "q2"}, meta.QueriesExecuted)
	assert.Empty(t, meta.BroadenedTo)
}

func TestFanoutWithoutBroadener(t *testing.T) {
	ff := &fakeFetcher{src: types.SourceOpenAlex}
	f := &Fanout{Fetcher: ff}
	recordSleep(f)

	blobs, meta := f.Run(context.Background(), []string{"q1"})
	assert.Empty(t, blobs)
	assert.Equal(t, []string{"q1"}, meta.QueriesExecuted)
	assert.Empty(t, meta.BroadenedTo)
}

func TestFanoutBudgetExhaustion(t *testing.T) {
	ff := &fakeFetcher{
		src: types.SourcePubMed,
		responses: map[string]string{
			"q1": blocks("q1", 1), "q2": blocks("q2", 1), "q3": blocks("q3", 1), "q4": blocks("q4", 1),
		},
	}
	b := budget.New(types.BudgetConfig{MaxCalls: 2})
	ctx := budget.NewContext(context.Background(), b)
	f := &Fanout{Fetcher: ff}
	waits := recordSleep(f)

	blobs, meta := f.Run(ctx, []string{"q1", "q2", "q3", "q4"})

	assert.Len(t, blobs, 2)
	assert.Equal(t, []string{"q1", "q2"}, meta.QueriesExecuted)
	assert.Equal(t, []string{"q3", "q4"}, meta.FailedQueries)
	assert.True(t, meta.BudgetExhausted)
	assert.Equal(t, []string{"q1", "q2"}, ff.calls)
	assert.Len(t, *waits, 2)
	assert.Equal(t, 2, b.Usage().Calls)
	assert.Equal(t, 2, b.Usage().ResultsBySource[types.SourcePubMed])
}

func TestFanoutCapsResultsPerSource(t *testing.T) {
	ff := &fakeFetcher{
		src:       types.SourceArxiv,
		responses: map[string]string{"q1": blocks("q1", 4), "q2": blocks("q2", 1)},
	}
	b := budget.New(types.BudgetConfig{MaxResultsPerSource: 5})
	ctx := budget.NewContext(context.Background(), b)
	f := &Fanout{Fetcher: ff, MaxPerQuery: 25}
	recordSleep(f)

	_, meta := f.Run(ctx, []string{"q1", "q2", "q3"})

	assert.Equal(t, []int{5, 1}, ff.limit)
	assert.Equal(t, []string{"q1", "q2"}, meta.QueriesExecuted)
	assert.Equal(t, []string{"q3"}, meta.FailedQueries)
	assert.True(t, meta.BudgetExhausted)
}

func TestFanoutStopsOnCancel(t *testing.T) {
	ff := &fakeFetcher{src: types.SourceArxiv, responses: map[string]string{"q1": blocks("q1", 1)}}
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fanout{Fetcher: ff}
	f.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	blobs, meta := f.Run(ctx, []string{"q1", "q2", "q3"})
	assert.Len(t, blobs, 1)
	assert.Equal(t, []string{"q1"}, meta.QueriesExecuted)
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}

func TestSearchSourcesKeepsOrder(t *testing.T) {
	var fanouts []*Fanout
	for _, src := range []types.Source{types.SourcePubMed, types.SourceArxiv, types.SourceOpenAlex} {
		ff := &fakeFetcher{src: src, responses: map[string]string{"q": blocks(string(src), 2)}}
		f := &Fanout{Fetcher: ff}
		recordSleep(f)
		fanouts = append(fanouts, f)
	}

	results := SearchSources(context.Background(), []string{"q"}, fanouts)

	require.Len(t, results, 3)
	assert.Equal(t, types.SourcePubMed, results[0].Source)
	assert.Equal(t, types.SourceArxiv, results[1].Source)
	assert.Equal(t, types.SourceOpenAlex, results[2].Source)
	for _, r := range results {
		assert.Len(t, r.Blobs, 1)
		assert.Equal(t, 2, r.Metadata.TotalPapers)
	}
}
