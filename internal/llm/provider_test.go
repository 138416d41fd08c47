// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/pdiddy/research-funnel/pkg/types"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, types.AIConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(ctx, types.AIConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New(ctx, types.AIConfig{Provider: "anthropic"})
	assert.ErrorContains(t, err, "requires an API key")

	_, err = New(ctx, types.AIConfig{Provider: "llama", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported llm provider")

	c, err = New(ctx, types.AIConfig{Provider: "Anthropic", APIKey: "k", MaxRetries: 2})
	require.NoError(t, err)
	g, ok := c.(*Guard)
	require.True(t, ok)
	assert.Equal(t, 2, g.Policy.Attempts)
	a, ok := g.Capability.(*AnthropicCapability)
	require.True(t, ok)
	assert.Equal(t, DefaultAnthropicModel, a.Model)

	c, err = New(ctx, types.AIConfig{Provider: "openai", APIKey: "k", Model: "gpt-x"})
	require.NoError(t, err)
	o, ok := c.(*Guard).Capability.(*OpenAICapability)
	require.True(t, ok)
	assert.Equal(t, "gpt-x", o.Model)
}

type fakeMessager struct {
	params anthropic.MessageNewParams
	resp   *anthropic.Message
	err    error
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return f.resp, f.err
}

func TestAnthropicCapability(t *testing.T) {
	fm := &fakeMessager{resp: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: "hello "},
		{Type: "thinking"},
		{Type: "text", Text: "world"},
	}}}
	a := &AnthropicCapability{Messages: fm, Model: "m"}

	out, err := a.Invoke(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
	assert.Equal(t, anthropic.Model("m"), fm.params.Model)
	assert.Equal(t, int64(4096), fm.params.MaxTokens)

	fm.resp = &anthropic.Message{}
	_, err = a.Invoke(context.Background(), "prompt")
	assert.Error(t, err)

	fm.err = errors.New("rate limited")
	_, err = a.Invoke(context.Background(), "prompt")
	assert.EqualError(t, err, "rate limited")
}

type fakeCompleter struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, nil
}

func TestOpenAICapability(t *testing.T) {
	fc := &fakeCompleter{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "answer"}},
	}}}
	o := &OpenAICapability{Client: fc, Model: "gpt"}

	out, err := o.Invoke(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	require.Len(t, fc.req.Messages, 2)
	assert.Equal(t, "question", fc.req.Messages[1].Content)

	fc.resp = openai.ChatCompletionResponse{}
	_, err = o.Invoke(context.Background(), "question")
	assert.Error(t, err)
}

type fakeGenerator struct {
	model string
	resp  *genai.GenerateContentResponse
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	return f.resp, nil
}

func TestGeminiCapability(t *testing.T) {
	fg := &fakeGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []*genai.Part{{Text: "gemini says hi"}}}},
	}}}
	g := &GeminiCapability{Models: fg, Model: "gemini-x"}

	out, err := g.Invoke(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "gemini says hi", out)
	assert.Equal(t, "gemini-x", fg.model)

	fg.resp = &genai.GenerateContentResponse{}
	_, err = g.Invoke(context.Background(), "p")
	assert.Error(t, err)
}
