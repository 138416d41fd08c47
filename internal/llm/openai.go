// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of the OpenAI client the adapter uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAICapability calls an OpenAI-compatible chat completion endpoint.
type OpenAICapability struct {
	Client    ChatCompleter
	Model     string
	MaxTokens int
}

// NewOpenAI builds an adapter. baseURL may point at any compatible server.
func NewOpenAI(apiKey, model, baseURL string, maxTokens int) *OpenAICapability {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAICapability{Client: openai.NewClientWithConfig(config), Model: model, MaxTokens: maxTokens}
}

func (o *OpenAICapability) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.Model,
		MaxTokens: o.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}
