// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search talks to the paper sources and post-processes what they
// return: per-source fetchers, the sequential query fan-out, cross-source
// deduplication, and the final rank-and-trim step.
//
// Fetchers return paper text in the block format understood by
// internal/papers. Every fetcher request goes through a rate limiter and
// the shared retry policy.
package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/research-funnel/internal/httputil"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// Fetcher retrieves papers for one query from a single source.
type Fetcher interface {
	Source() types.Source

	// Fetch returns blank-line separated paper blocks, or
	// types.NoPapersFound when the source has nothing. queryOrURL may be a
	// full request URL. An error means the request could not be completed.
	Fetch(ctx context.Context, queryOrURL string, maxResults int) (string, error)
}

// Broadener is implemented by fetchers that can rewrite a query into a
// broader form when it comes back empty.
type Broadener interface {
	Broaden(query string) (string, bool)
}

// defaultFetchMax is the result count used when a caller passes zero.
const defaultFetchMax = 18

// client is the HTTP plumbing shared by the fetchers.
type client struct {
	HTTP      *http.Client
	Policy    httputil.Policy
	Limiter   *rate.Limiter
	UserAgent string
}

func newClient(cfg types.SearchConfig, every time.Duration) client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return client{
		HTTP:      &http.Client{Timeout: timeout},
		Policy:    httputil.PolicyFrom(cfg.Retry),
		Limiter:   rate.NewLimiter(rate.Every(every), 1),
		UserAgent: cfg.UserAgent,
	}
}

// get waits for the limiter and performs a retried GET.
func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	return c.Policy.GetBody(ctx, hc, url, c.UserAgent)
}

// NewFetcher builds the fetcher for src from configuration.
func NewFetcher(src types.Source, cfg types.SearchConfig) (Fetcher, error) {
	switch src {
	case types.SourceArxiv:
		return NewArxivFetcher(cfg), nil
	case types.SourcePubMed:
		return NewPubMedFetcher(cfg), nil
	case types.SourceOpenAlex:
		return NewOpenAlexFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported source %q", src)
	}
}
