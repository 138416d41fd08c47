// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ContentGenerator is the part of the Gemini client the adapter uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCapability calls the Gemini API through google.golang.org/genai.
type GeminiCapability struct {
	Models    ContentGenerator
	Model     string
	MaxTokens int32
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiCapability, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiCapability{Models: client.Models, Model: model, MaxTokens: int32(maxTokens)}, nil
}

func (g *GeminiCapability) Invoke(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
	}
	if g.MaxTokens > 0 {
		config.MaxOutputTokens = g.MaxTokens
	}
	resp, err := g.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return text, nil
}
