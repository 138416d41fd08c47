// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package budget bounds the external work of one funnel run: the number of
// external calls, the wall-clock time, and the results collected per source.
// A Budget is created per run and carried in the context so concurrent runs
// never share counters.
package budget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pdiddy/research-funnel/pkg/types"
)

// ErrExhausted is returned once any limit of the budget has been reached.
var ErrExhausted = errors.New("run budget exhausted")

// Budget is a per-run set of limits guarded by one mutex. Zero limits are
// unlimited. A nil *Budget is valid and never exhausts; a zero Budget starts
// its clock on first use.
type Budget struct {
	MaxCalls            int
	MaxWallClock        time.Duration
	MaxResultsPerSource int

	mu        sync.Mutex
	started   time.Time
	calls     int
	results   map[types.Source]int
	exhausted bool
	now       func() time.Time
}

// New starts a budget from configuration.
func New(cfg types.BudgetConfig) *Budget {
	return &Budget{
		MaxCalls:            cfg.MaxCalls,
		MaxWallClock:        cfg.MaxWallClock,
		MaxResultsPerSource: cfg.MaxResultsPerSource,
		started:             time.Now(),
		results:             map[types.Source]int{},
		now:                 time.Now,
	}
}

func (b *Budget) clock() time.Time {
	if b.now == nil {
		b.now = time.Now
	}
	if b.started.IsZero() {
		b.started = b.now()
	}
	return b.now()
}

// checkLocked updates the exhausted flag. Callers hold b.mu.
func (b *Budget) checkLocked() bool {
	if b.exhausted {
		return true
	}
	if now := b.clock(); b.MaxWallClock > 0 && now.Sub(b.started) >= b.MaxWallClock {
		b.exhausted = true
	}
	return b.exhausted
}

// AcquireCall reserves one external call. It returns ErrExhausted when the
// call or wall-clock limit has been reached; once exhausted, it stays exhausted.
func (b *Budget) AcquireCall() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.checkLocked() {
		return ErrExhausted
	}
	if b.MaxCalls > 0 && b.calls >= b.MaxCalls {
		b.exhausted = true
		return ErrExhausted
	}
	b.calls++
	return nil
}

// ResultsRemaining returns how many more results src may collect, or -1
// when unlimited.
func (b *Budget) ResultsRemaining(src types.Source) int {
	if b == nil || b.MaxResultsPerSource <= 0 {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := b.MaxResultsPerSource - b.results[src]; n > 0 {
		return n
	}
	return 0
}

// AddResults records n results collected from src.
func (b *Budget) AddResults(src types.Source, n int) {
	if b == nil || n <= 0 {
		return
	}
	b.mu.Lock()
	if b.results == nil {
		b.results = map[types.Source]int{}
	}
	b.results[src] += n
	b.mu.Unlock()
}

// Exhausted reports whether a call or time limit has been hit.
func (b *Budget) Exhausted() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checkLocked()
}

// Usage returns a snapshot of the budget counters.
func (b *Budget) Usage() types.BudgetUsage {
	if b == nil {
		return types.BudgetUsage{ResultsBySource: map[types.Source]int{}}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make(map[types.Source]int, len(b.results))
	for k, v := range b.results {
		res[k] = v
	}
	return types.BudgetUsage{
		Calls:           b.calls,
		MaxCalls:        b.MaxCalls,
		ElapsedSeconds:  b.clock().Sub(b.started).Seconds(),
		ResultsBySource: res,
		Exhausted:       b.checkLocked(),
	}
}

type ctxKey struct{}

// NewContext returns a context carrying b.
func NewContext(ctx context.Context, b *Budget) context.Context {
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext returns the budget carried by ctx, or nil.
func FromContext(ctx context.Context) *Budget {
	b, _ := ctx.Value(ctxKey{}).(*Budget)
	return b
}
