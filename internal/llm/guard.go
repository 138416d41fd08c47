// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/research-funnel/internal/budget"
	"github.com/pdiddy/research-funnel/internal/httputil"
)

// Guard wraps a Capability with the run budget, a hard per-attempt
// timeout, and the shared retry policy. A budget-exhausted error is never
// retried.
type Guard struct {
	Capability Capability
	Policy     httputil.Policy
	Timeout    time.Duration
}

// Invoke acquires one budget call per attempt and calls the wrapped capability.
func (g *Guard) Invoke(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.Capability == nil {
		return "", ErrNoCapability
	}
	b := budget.FromContext(ctx)

	var out string
	err := g.Policy.Do(ctx, func(ctx context.Context) error {
		if err := b.AcquireCall(); err != nil {
			return httputil.Permanent(err)
		}
		callCtx := ctx
		if g.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.Timeout)
			defer cancel()
		}
		text, err := g.Capability.Invoke(callCtx, prompt)
		if err != nil {
			return fmt.Errorf("capability call: %w", err)
		}
		out = text
		return nil
	})
	return out, err
}
