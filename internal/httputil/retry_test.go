// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// fast is a policy with tiny delays so tests finish quickly.
var fast = Policy{Attempts: 3, BaseDelay: time.Millisecond}

func TestPolicyDo_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicyDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("still failing")
	})
	require.EqualError(t, err, "still failing")
	assert.Equal(t, 3, calls)
}

func TestPolicyDo_PermanentStops(t *testing.T) {
	sentinel := errors.New("bad request")
	calls := 0
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_ContextCancelled(t *testing.T) {
	slow := Policy{Attempts: 5, BaseDelay: 500 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := slow.Do(ctx, func(context.Context) error { return errors.New("transient") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicyBackoff(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Millisecond, Jitter: 5 * time.Millisecond}
	for n, base := range []time.Duration{10, 20, 40} {
		d := p.Backoff(n)
		assert.GreaterOrEqual(t, d, base*time.Millisecond)
		assert.Less(t, d, base*time.Millisecond+5*time.Millisecond)
	}
}

func TestPolicyFrom(t *testing.T) {
	p := PolicyFrom(types.RetryConfig{})
	assert.Equal(t, DefaultPolicy, p)

	p = PolicyFrom(types.RetryConfig{Attempts: 5, BaseDelay: 2 * time.Second})
	assert.Equal(t, 5, p.Attempts)
	assert.Equal(t, 2*time.Second, p.BaseDelay)
	assert.Equal(t, time.Second, p.Jitter)
}

func TestGetBody_RetriesThen200(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "research-funnel/test", r.Header.Get("User-Agent"))
		switch n {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte("ok"))
		}
	}))
	defer ts.Close()

	body, err := fast.GetBody(context.Background(), ts.Client(), ts.URL, "research-funnel/test")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetBody_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := fast.GetBody(context.Background(), ts.Client(), ts.URL, "")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetBody_ExhaustsOnServerError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := fast.GetBody(context.Background(), ts.Client(), ts.URL, "")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
