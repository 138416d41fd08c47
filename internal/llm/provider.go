// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-funnel/internal/httputil"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// New builds the capability named by cfg.Provider, wrapped in a Guard.
// Provider "none" or "" returns a nil Capability and no error; callers then
// use their heuristic paths.
func New(ctx context.Context, cfg types.AIConfig) (Capability, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == "none" {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s provider requires an API key", provider)
	}

	var c Capability
	switch provider {
	case "anthropic", "claude":
		c = NewAnthropic(cfg.APIKey, modelOr(cfg.Model, DefaultAnthropicModel), cfg.BaseURL, cfg.MaxTokens)
	case "openai":
		c = NewOpenAI(cfg.APIKey, modelOr(cfg.Model, DefaultOpenAIModel), cfg.BaseURL, cfg.MaxTokens)
	case "gemini":
		g, err := NewGemini(ctx, cfg.APIKey, modelOr(cfg.Model, DefaultGeminiModel), cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	policy := httputil.DefaultPolicy
	if cfg.MaxRetries > 0 {
		policy.Attempts = cfg.MaxRetries
	}
	return &Guard{Capability: c, Policy: policy, Timeout: cfg.Timeout}, nil
}

func modelOr(model, def string) string {
	if model == "" {
		return def
	}
	return model
}
