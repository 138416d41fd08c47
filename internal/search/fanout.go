// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-funnel/internal/budget"
	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// Fanout sends a list of queries to one source, one after another, with a
// courtesy delay between calls. Failures are recorded and never abort the
// run.
type Fanout struct {
	Fetcher         Fetcher
	MaxPerQuery     int
	PolitenessDelay time.Duration
	Logger          *zap.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFanout creates a fan-out for f using the search configuration.
func NewFanout(f Fetcher, cfg types.SearchConfig, logger *zap.Logger) *Fanout {
	return &Fanout{
		Fetcher:         f,
		MaxPerQuery:     cfg.MaxPerQuery,
		PolitenessDelay: cfg.PolitenessDelay,
		Logger:          logger,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *Fanout) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// Run executes queries in order and returns the non-empty result blobs
// with metadata. A run budget in ctx is charged one call per fetch. When
// the first query finds nothing and the fetcher is a Broadener, the
// broader form is tried once. Cancellation stops the loop and returns what
// was collected.
func (f *Fanout) Run(ctx context.Context, queries []string) ([]string, types.FanoutMetadata) {
	start := time.Now()
	src := f.Fetcher.Source()
	meta := types.FanoutMetadata{
		Source:          src,
		QueriesExecuted: []string{},
		FailedQueries:   []string{},
		PapersPerQuery:  make(map[string]int),
	}
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	b := budget.FromContext(ctx)
	log := f.logger().With(zap.String("source", string(src)))

	var blobs []string
	called := false
	wait := func() bool {
		if called {
			if err := sleep(ctx, f.PolitenessDelay); err != nil {
				return false
			}
		}
		called = true
		return true
	}
	collect := func(q string) int {
		blob, n := f.fetchOne(ctx, q, b, &meta, log)
		if n > 0 {
			blobs = append(blobs, blob)
		}
		return n
	}

	for i, q := range queries {
		if ctx.Err() != nil {
			break
		}
		if b.Exhausted() {
			meta.FailedQueries = append(meta.FailedQueries, q)
			meta.BudgetExhausted = true
			continue
		}
		if !wait() {
			break
		}
		n := collect(q)

		if i == 0 && n == 0 {
			br, ok := f.Fetcher.(Broadener)
			if !ok {
				continue
			}
			broad, ok := br.Broaden(q)
			if !ok || b.Exhausted() {
				continue
			}
			meta.BroadenedFrom, meta.BroadenedTo = q, broad
			log.Info("broadening query", zap.String("from", q), zap.String("to", broad))
			if !wait() {
				break
			}
			collect(broad)
		}
	}

	meta.Elapsed = time.Since(start)
	log.Info("fan-out complete",
		zap.Int("queries", len(meta.QueriesExecuted)),
		zap.Int("failed", len(meta.FailedQueries)),
		zap.Int("papers", meta.TotalPapers),
		zap.Duration("elapsed", meta.Elapsed),
	)
	return blobs, meta
}

// fetchOne runs a single query and records the outcome in meta. It returns
// the blob and its paper count; zero means a soft failure. The query costs
// one budget call whatever the fetcher does underneath (pages, retries).
func (f *Fanout) fetchOne(ctx context.Context, q string, b *budget.Budget, meta *types.FanoutMetadata, log *zap.Logger) (string, int) {
	src := meta.Source
	remaining := b.ResultsRemaining(src)
	if remaining == 0 {
		meta.FailedQueries = append(meta.FailedQueries, q)
		meta.BudgetExhausted = true
		return "", 0
	}
	if err := b.AcquireCall(); err != nil {
		meta.FailedQueries = append(meta.FailedQueries, q)
		meta.BudgetExhausted = true
		log.Warn("budget exhausted", zap.String("query", q), zap.Error(err))
		return "", 0
	}

	limit := f.MaxPerQuery
	if limit <= 0 {
		limit = defaultFetchMax
	}
	if remaining > 0 && remaining < limit {
		limit = remaining
	}

	meta.QueriesExecuted = append(meta.QueriesExecuted, q)
	meta.PapersPerQuery[q] = 0
	text, err := f.Fetcher.Fetch(ctx, q, limit)
	if err != nil {
		meta.FailedQueries = append(meta.FailedQueries, q)
		log.Warn("query failed", zap.String("query", q), zap.Error(err))
		return "", 0
	}
	if papers.IsMarker(text) {
		meta.FailedQueries = append(meta.FailedQueries, q)
		log.Debug("query returned no papers", zap.String("query", q))
		return "", 0
	}

	n := len(papers.SplitBlocks(text))
	meta.PapersPerQuery[q] = n
	meta.TotalPapers += n
	b.AddResults(src, n)
	log.Debug("query complete", zap.String("query", q), zap.Int("papers", n))
	return text, n
}

// SourceResult is one source's fan-out output.
type SourceResult struct {
	Source   types.Source
	Blobs    []string
	Metadata types.FanoutMetadata
}

// SearchSources runs every fan-out concurrently over the same queries. The
// results come back in the order of fanouts.
func SearchSources(ctx context.Context, queries []string, fanouts []*Fanout) []SourceResult {
	out := make([]SourceResult, len(fanouts))
	var g errgroup.Group
	for i, f := range fanouts {
		g.Go(func() error {
			blobs, meta := f.Run(ctx, queries)
			out[i] = SourceResult{Source: meta.Source, Blobs: blobs, Metadata: meta}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
