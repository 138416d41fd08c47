// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm defines the language capability used for terminology
// expansion, domain classification, relevance scoring and synthesis, plus
// adapters for the Anthropic, OpenAI and Gemini APIs.
//
// Every call site treats the capability as optional and unreliable: a nil
// Capability or any error sends the caller down its rule-based fallback.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoCapability is returned when a call is made without a configured capability.
var ErrNoCapability = errors.New("no language capability configured")

// Capability takes a prompt and returns generated text.
type Capability interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Capability. Tests use it for stubs.
type Func func(ctx context.Context, prompt string) (string, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// InvokeJSON calls c and decodes the JSON object in its reply into out.
// Markdown code fences and any prose around the object are ignored.
func InvokeJSON(ctx context.Context, c Capability, prompt string, out any) error {
	if c == nil {
		return ErrNoCapability
	}
	text, err := c.Invoke(ctx, prompt)
	if err != nil {
		return err
	}
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("parsing capability JSON: %w", err)
	}
	return nil
}

// ExtractJSON returns the span from the first '{' to the last '}' of text
// after stripping code fences.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in capability response")
	}
	return s[start : end+1], nil
}
