// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package funnel runs one research request through every stage: term
// expansion, per-source fan-out, cross-source deduplication, the domain and
// relevance filters, rank-and-trim, synthesis and validation.
//
// Stage failures never abort a run. They fall back to rule-based results
// and leave a note on the ResearchResult. Only a request that cannot run at
// all (no query, no usable source) returns an error.
package funnel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/budget"
	"github.com/pdiddy/research-funnel/internal/domain"
	"github.com/pdiddy/research-funnel/internal/expand"
	"github.com/pdiddy/research-funnel/internal/filter"
	"github.com/pdiddy/research-funnel/internal/httputil"
	"github.com/pdiddy/research-funnel/internal/llm"
	"github.com/pdiddy/research-funnel/internal/papers"
	"github.com/pdiddy/research-funnel/internal/search"
	"github.com/pdiddy/research-funnel/internal/synthesis"
	"github.com/pdiddy/research-funnel/pkg/types"
)

var (
	// ErrNoSources is returned when a request names no usable source.
	ErrNoSources = errors.New("no valid sources")

	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query is required")
)

// Funnel holds the stage implementations of one configured pipeline. It is
// safe for concurrent use; every run gets its own budget.
type Funnel struct {
	Fetchers    map[types.Source]search.Fetcher
	Expander    *expand.Expander
	Domain      *filter.DomainFilter
	Relevance   *filter.RelevanceFilter
	Synthesizer *synthesis.Synthesizer
	Config      types.PipelineConfig
	Logger      *zap.Logger
}

// New builds a funnel with a fetcher for every source. A nil capability
// runs every stage on its rule-based path. A capability that is not
// already a Guard is wrapped in one that charges the run budget and retries.
func New(cfg types.PipelineConfig, capability llm.Capability, logger *zap.Logger) (*Funnel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fetchers := make(map[types.Source]search.Fetcher, len(types.AllSources))
	for _, src := range types.AllSources {
		f, err := search.NewFetcher(src, cfg.Search)
		if err != nil {
			return nil, fmt.Errorf("creating %s fetcher: %w", src, err)
		}
		fetchers[src] = f
	}

	if _, guarded := capability.(*llm.Guard); capability != nil && !guarded {
		capability = &llm.Guard{
			Capability: capability,
			Policy: httputil.PolicyFrom(types.RetryConfig{
				Attempts:  cfg.AI.MaxRetries,
				BaseDelay: cfg.Search.Retry.BaseDelay,
				Jitter:    cfg.Search.Retry.Jitter,
			}),
			Timeout: cfg.AI.Timeout,
		}
	}
	var filterCap llm.Capability
	if cfg.Filter.UseAI {
		filterCap = capability
	}

	return &Funnel{
		Fetchers: fetchers,
		Expander: &expand.Expander{
			Capability:          capability,
			MaxTermsPerCategory: cfg.Expansion.MaxTermsPerCategory,
			UseAI:               cfg.Expansion.UseAI,
			Logger:              logger,
		},
		Domain: &filter.DomainFilter{Capability: filterCap, Logger: logger},
		Relevance: &filter.RelevanceFilter{
			Capability: filterCap,
			MinScore:   cfg.Filter.MinRelevance,
			MaxPapers:  cfg.Filter.MaxPapers,
			Logger:     logger,
		},
		Synthesizer: &synthesis.Synthesizer{Capability: capability, Logger: logger},
		Config:      cfg,
		Logger:      logger,
	}, nil
}

func (f *Funnel) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// DomainContext builds the domain context of req. Display names such as
// "Computer Science" are accepted; unknown names are returned separately.
func DomainContext(req types.ResearchRequest) (*types.DomainContext, []string) {
	primary, unknownP := domain.ParseAll(req.PrimaryDomains)
	exclude, unknownE := domain.ParseAll(req.ExcludeDomains)
	dc := types.NewDomainContext(domainStrings(primary), domainStrings(exclude), req.FocusKeywords)
	return dc, append(unknownP, unknownE...)
}

func domainStrings(ds []types.Domain) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

// Sources resolves the requested source names against the configured
// fetchers, in request order with duplicates removed. An empty request
// uses the configured default sources. Unknown or unavailable names are
// returned as notes.
func (f *Funnel) Sources(names []string) ([]types.Source, []string) {
	var (
		out   []types.Source
		notes []string
	)
	seen := map[types.Source]bool{}
	add := func(src types.Source) {
		if seen[src] {
			return
		}
		seen[src] = true
		if f.Fetchers[src] == nil {
			notes = append(notes, fmt.Sprintf("Source %s is not configured", src))
			return
		}
		out = append(out, src)
	}

	if len(names) == 0 {
		defaults := f.Config.Search.Sources
		if len(defaults) == 0 {
			defaults = types.DefaultSources
		}
		for _, src := range defaults {
			add(src)
		}
		return out, notes
	}
	for _, name := range names {
		src, err := types.ParseSource(name)
		if err != nil {
			notes = append(notes, fmt.Sprintf("Unknown source %q ignored", name))
			continue
		}
		add(src)
	}
	return out, notes
}

// Plan returns the expanded terminology and the fan-out query list for
// query without contacting any source.
func (f *Funnel) Plan(ctx context.Context, query string, dc *types.DomainContext) (types.ExpandedTerminology, []string) {
	e := f.Expander
	if e == nil {
		e = &expand.Expander{MaxTermsPerCategory: f.Config.Expansion.MaxTermsPerCategory}
	}
	terms := e.Expand(ctx, query, dc)
	return terms, expand.BuildQueries(query, terms, f.Config.Expansion.MaxQueries, f.Config.Expansion.TopPrimary)
}

// Research runs the whole funnel for req.
func (f *Funnel) Research(ctx context.Context, req types.ResearchRequest) (*types.ResearchResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	sources, notes := f.Sources(req.Sources)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, strings.Join(req.Sources, ", "))
	}

	start := time.Now()
	log := f.logger().With(zap.String("query", query))

	dc, unknown := DomainContext(req)
	for _, name := range unknown {
		notes = append(notes, fmt.Sprintf("Unknown domain %q ignored", name))
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = f.Config.Search.MaxResults
	}

	b := budget.New(f.Config.Budget)
	ctx = budget.NewContext(ctx, b)

	res := &types.ResearchResult{
		Query:         query,
		Sources:       sources,
		DomainContext: dc,
		Fanout:        []types.FanoutMetadata{},
		Results:       map[types.Source]string{},
		Ranked:        []types.RankedResultSet{},
	}

	res.Terminology, res.Queries = f.Plan(ctx, query, dc)
	log.Info("query plan ready", zap.Int("queries", len(res.Queries)), zap.Int("sources", len(sources)))

	// Fan out per source, sources concurrently.
	fanouts := make([]*search.Fanout, len(sources))
	for i, src := range sources {
		fanouts[i] = search.NewFanout(f.Fetchers[src], f.Config.Search, log)
	}
	bySource := map[types.Source][]string{}
	for _, r := range search.SearchSources(ctx, res.Queries, fanouts) {
		bySource[r.Source] = r.Blobs
		res.Fanout = append(res.Fanout, r.Metadata)
		if n := len(r.Metadata.FailedQueries); n > 0 && n == len(r.Metadata.QueriesExecuted) {
			notes = append(notes, fmt.Sprintf("All %d queries to %s failed", n, r.Source))
		}
	}

	// Deduplicate across sources, then parse.
	deduped, removed := search.DedupeSources(sources, bySource)
	res.DuplicatesRemoved = removed
	var all []types.Paper
	for _, src := range sources {
		for _, p := range papers.Parse(deduped[src], src) {
			p.ID = string(src) + ":" + p.ID
			all = append(all, p)
		}
	}
	res.UniquePapers = len(all)
	log.Info("papers collected", zap.Int("unique", len(all)), zap.Int("duplicates", removed))

	// Domain filter first, relevance second.
	kept := all
	if dc != nil {
		df := f.Domain
		if df == nil {
			df = &filter.DomainFilter{Logger: f.Logger}
		}
		kept, res.Domain = df.Filter(ctx, kept, dc)
	}
	rf := f.Relevance
	if rf == nil {
		rf = &filter.RelevanceFilter{MinScore: f.Config.Filter.MinRelevance, MaxPapers: f.Config.Filter.MaxPapers, Logger: f.Logger}
	}
	kept, relevance := rf.Filter(ctx, query, kept)
	res.Relevance = &relevance
	if rf.Capability != nil {
		if n := keywordFallbacks(relevance.Scored); n > 0 {
			notes = append(notes, fmt.Sprintf("Relevance scoring fell back to keyword matching for %d of %d papers", n, len(relevance.Scored)))
		}
	}

	// Rank and trim each source's survivors.
	bySrc := map[types.Source][]types.Paper{}
	for _, p := range kept {
		bySrc[p.Source] = append(bySrc[p.Source], p)
	}
	filtered := make(map[types.Source]string, len(sources))
	for _, src := range sources {
		if len(bySrc[src]) == 0 {
			filtered[src] = types.NoPapersFound
			continue
		}
		filtered[src] = papers.FormatAll(bySrc[src])
	}
	res.Results = search.RankAndTrim(filtered, query, maxResults)
	for _, src := range sources {
		set := search.Rank(res.Results[src], query, 0)
		set.Source = src
		if set.Entries == nil {
			set.Entries = []types.RankedEntry{}
		}
		res.Ranked = append(res.Ranked, set)
	}

	f.synthesize(ctx, req, res, &notes)

	if b.Exhausted() {
		notes = append(notes, "Run budget exhausted; results are partial")
	}
	res.Budget = b.Usage()
	res.Notes = notes

	log.Info("research complete",
		zap.Int("papers", res.Papers()),
		zap.Int("notes", len(notes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// synthesize writes the report and validates it. A run without papers gets
// the fixed "No papers found to analyze." text and no validation.
func (f *Funnel) synthesize(ctx context.Context, req types.ResearchRequest, res *types.ResearchResult, notes *[]string) {
	if req.SkipSynthesis || !f.Config.Synthesis.Enabled {
		return
	}
	if !synthesis.HasContent(res.Results) {
		res.Synthesis = synthesis.NoPapers
		return
	}
	prompt := synthesis.BuildPrompt(res.Query, res.Results, res.Sources, f.Config.Synthesis.MaxCombinedChars)
	res.Synthesis = f.Synthesizer.Synthesize(ctx, prompt)
	if synthesis.Unavailable(res.Synthesis) {
		*notes = append(*notes, "Synthesis unavailable; returning ranked papers only")
		return
	}
	v := f.Synthesizer.Validator().Validate(res.Synthesis)
	res.Validation = &v
}

func keywordFallbacks(scored []types.RelevanceScore) int {
	n := 0
	for _, s := range scored {
		if len(s.Reasons) == 1 && strings.HasPrefix(s.Reasons[0], "Keyword matching:") {
			n++
		}
	}
	return n
}
