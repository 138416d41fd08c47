// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a research assistant that helps find and analyze scholarly papers. When asked for JSON, return strict JSON only."

// AnthropicMessager is the part of the Anthropic client the adapter uses.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCapability calls the Anthropic Messages API.
type AnthropicCapability struct {
	Messages  AnthropicMessager
	Model     string
	MaxTokens int64
}

// NewAnthropic builds an adapter from an API key and optional base URL.
func NewAnthropic(apiKey, model, baseURL string, maxTokens int) *AnthropicCapability {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	c := anthropic.NewClient(opts...)
	return &AnthropicCapability{Messages: &c.Messages, Model: model, MaxTokens: int64(maxTokens)}
}

// Invoke sends prompt as a single user message and joins the text blocks of the reply.
func (a *AnthropicCapability) Invoke(ctx context.Context, prompt string) (string, error) {
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	resp, err := a.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.Model),
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Anthropic response")
	}
	return sb.String(), nil
}
