// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retry policy and HTTP helpers shared by the
// source fetchers and the language capability guard.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// Policy is a bounded exponential backoff with jitter. The delay before
// retry n (counting from zero) is BaseDelay·2^n plus a random duration in
// [0, Jitter).
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	Jitter    time.Duration
}

// DefaultPolicy is three attempts starting at one second with one second of jitter.
var DefaultPolicy = Policy{Attempts: 3, BaseDelay: time.Second, Jitter: time.Second}

// PolicyFrom builds a Policy from configuration, falling back to
// DefaultPolicy for unset fields.
func PolicyFrom(cfg types.RetryConfig) Policy {
	p := DefaultPolicy
	if cfg.Attempts > 0 {
		p.Attempts = cfg.Attempts
	}
	if cfg.BaseDelay > 0 {
		p.BaseDelay = cfg.BaseDelay
	}
	if cfg.Jitter > 0 {
		p.Jitter = cfg.Jitter
	}
	return p
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Backoff returns the wait before retry number n (zero-based).
func (p Policy) Backoff(n int) time.Duration {
	d := p.BaseDelay << uint(n)
	if p.Jitter > 0 {
		d += rand.N(p.Jitter)
	}
	return d
}

// Do calls fn until it succeeds, returns a permanent error, the attempts are
// used up, or ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for n := 0; n < attempts; n++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if IsPermanent(err) {
			var pe *permanentError
			errors.As(err, &pe)
			return pe.err
		}
		if n == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff(n)):
		}
	}
	return err
}

// StatusError is returned by GetBody for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Retryable reports whether a status code is worth another attempt.
func Retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// GetBody performs a GET under the policy and returns the response body.
// Transport errors, 429 and 5xx responses are retried; other non-2xx
// responses fail immediately with a *StatusError.
func (p Policy) GetBody(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	var body []byte
	err := p.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Permanent(fmt.Errorf("creating request: %w", err))
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			serr := &StatusError{URL: url, StatusCode: resp.StatusCode}
			if Retryable(resp.StatusCode) {
				return serr
			}
			return Permanent(serr)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
